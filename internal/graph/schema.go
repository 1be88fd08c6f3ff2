// Package graph exposes the task service over GraphQL.
package graph

import (
	"net/http"

	"kanban/internal/service"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
)

// Schema has no argument that writes status after creation; status changes
// come from column moves only.
const Schema = `
schema {
	query: Query
	mutation: Mutation
}

type Task {
	id: ID!
	title: String!
	detail: String!
	assignedTo: String!
	status: String!
	column: String!
}

type TaskStats {
	total: Int!
	todo: Int!
	doing: Int!
	done: Int!
	# JSON object keyed by status
	byStatus: String!
}

type Query {
	tasks: [Task!]!
	task(id: ID!): Task
	tasksByColumn(column: String!): [Task!]!
	searchTasks(query: String!): [Task!]!
	tasksStats: TaskStats!
}

type Mutation {
	addTask(title: String!, detail: String!, assignedTo: String!, status: String, column: String!): Task
	createTask(title: String!, detail: String!, assignedTo: String!, status: String, column: String!): Task
	updateTask(id: ID!, title: String, detail: String, assignedTo: String, column: String): Task
	updateTaskColumn(id: ID!, column: String!): Task
	updateTaskAssignment(id: ID!, assignedTo: String!): Task
	deleteTask(id: ID!): Task
	duplicateTask(id: ID!): Task
	# Updates run in order and stop at the first failure. Earlier updates stay
	# applied; the error names the index and id of the failing update.
	bulkUpdateTasks(updates: [TaskUpdateInput!]!): [Task!]!
}

input TaskUpdateInput {
	id: ID!
	title: String
	detail: String
	assignedTo: String
	column: String
}
`

// NewHandler parses the schema against svc and returns the HTTP endpoint.
func NewHandler(svc *service.TaskService) http.Handler {
	schema := graphql.MustParseSchema(Schema, &Resolver{svc: svc})
	return &relay.Handler{Schema: schema}
}

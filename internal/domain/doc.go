// Package domain contains the core business entities of the taskboard
// application (users, tasks, user tasks and subtasks) together with their
// validation rules and shared domain errors. It has no dependencies on the
// persistence or transport layers.
package domain

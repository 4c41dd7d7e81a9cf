package delivery

import "taskboard/pkg/validation"

const subtaskItem = `{
	"type": "object",
	"additionalProperties": false,
	"required": ["title"],
	"properties": {
		"id": {"type": "string"},
		"title": {"type": "string", "minLength": 1, "maxLength": 200},
		"status": {"enum": ["pending", "completed"]}
	}
}`

const taskProperties = `{
	"title": {"type": "string", "minLength": 1, "maxLength": 200},
	"description": {"type": "string", "maxLength": 5000},
	"status": {"enum": ["pending", "inprogress", "in_progress", "in progress", "completed"]},
	"priority": {"enum": ["low", "medium", "high"]},
	"dueDate": {"type": ["string", "null"]},
	"subtasks": {"type": ["array", "null"], "items": ` + subtaskItem + `}
}`

var (
	createTaskSchema = validation.MustCompile("task-create", `{
		"type": "object",
		"additionalProperties": false,
		"required": ["title"],
		"properties": `+taskProperties+`
	}`)

	patchTaskSchema = validation.MustCompile("task-patch", `{
		"type": "object",
		"additionalProperties": false,
		"minProperties": 1,
		"properties": `+taskProperties+`
	}`)

	statusSchema = validation.MustCompile("task-status", `{
		"type": "object",
		"additionalProperties": false,
		"required": ["status"],
		"properties": {
			"status": {"enum": ["pending", "inprogress", "in_progress", "in progress", "completed"]}
		}
	}`)

	createSubtaskSchema = validation.MustCompile("subtask-create", `{
		"type": "object",
		"additionalProperties": false,
		"required": ["title"],
		"properties": {
			"title": {"type": "string", "minLength": 1, "maxLength": 200},
			"status": {"enum": ["pending", "completed"]}
		}
	}`)

	patchSubtaskSchema = validation.MustCompile("subtask-patch", `{
		"type": "object",
		"additionalProperties": false,
		"minProperties": 1,
		"properties": {
			"title": {"type": "string", "minLength": 1, "maxLength": 200},
			"status": {"enum": ["pending", "completed"]}
		}
	}`)
)

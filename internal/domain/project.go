package domain

import (
	"time"

	"github.com/google/uuid"
)

// Node types used in a project structure tree.
const (
	NodeTypePhase   = "phase"
	NodeTypeTask    = "task"
	NodeTypeSubtask = "subtask"
)

// Subtask is a leaf of the project tree. It is the only node kind that
// carries completion state.
type Subtask struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
	Comment   string `json:"comment"`
}

// Task groups subtasks inside a phase.
type Task struct {
	ID       string    `json:"id"`
	Type     string    `json:"type"`
	Name     string    `json:"name"`
	Children []Subtask `json:"children"`
}

// Phase is a top-level node of the project structure.
// The tree has a fixed depth of three: phase -> task -> subtask.
type Phase struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Name     string `json:"name"`
	Children []Task `json:"children"`
}

// Project represents a project with its phases, tasks and subtasks.
// The structure tree has no identity outside the owning project.
type Project struct {
	// ID is the unique identifier for the project (generated if absent).
	ID string `json:"id"`

	// Name is the display name, required non-empty at creation.
	Name string `json:"name"`

	// Template is a free-form label ("leer" means empty).
	Template string `json:"template"`

	// CreatedAt is the creation timestamp, ISO 8601 UTC.
	CreatedAt string `json:"created_at"`

	// Structure is the ordered sequence of phases.
	Structure []Phase `json:"structure"`
}

// NewProject creates a project with a generated ID and an empty structure.
// An empty template defaults to "leer".
func NewProject(name, template string) *Project {
	if template == "" {
		template = "leer"
	}
	return &Project{
		ID:        uuid.NewString(),
		Name:      name,
		Template:  template,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Structure: []Phase{},
	}
}

// NewPhase creates a phase node with a generated ID.
func NewPhase(name string) Phase {
	return Phase{ID: uuid.NewString(), Type: NodeTypePhase, Name: name, Children: []Task{}}
}

// NewTask creates a task node with a generated ID.
func NewTask(name string) Task {
	return Task{ID: uuid.NewString(), Type: NodeTypeTask, Name: name, Children: []Subtask{}}
}

// NewSubtask creates a subtask node with a generated ID.
func NewSubtask(name string, completed bool, comment string) Subtask {
	return Subtask{ID: uuid.NewString(), Type: NodeTypeSubtask, Name: name, Completed: completed, Comment: comment}
}

// SubtaskCounts returns the total and completed subtask counts of the tree.
func (p *Project) SubtaskCounts() (total, completed int) {
	for _, phase := range p.Structure {
		for _, task := range phase.Children {
			for _, sub := range task.Children {
				total++
				if sub.Completed {
					completed++
				}
			}
		}
	}
	return total, completed
}

// Progress computes the completion percentage of the project:
// completed subtasks / total subtasks * 100, or 0 when there are no subtasks.
// It is computed per request and never stored.
func (p *Project) Progress() float64 {
	total, completed := p.SubtaskCounts()
	if total == 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100
}

// SampleProject returns the predefined example project seeded on the first
// offline start.
func SampleProject() *Project {
	proj := NewProject("Beispiel: Softwareentwicklung", "Softwareentwicklung")

	requirements := NewTask("1.1. Anforderungen definieren")
	requirements.Children = []Subtask{
		NewSubtask("1.1.1. Stakeholder-Interviews", true, "Alle wichtigen Stakeholder wurden befragt."),
		NewSubtask("1.1.2. User Stories schreiben", false, ""),
	}

	planning := NewPhase("1. Konzeption & Planung")
	planning.Children = []Task{
		requirements,
		NewTask("1.2. Technisches Design"),
	}

	proj.Structure = []Phase{
		planning,
		NewPhase("2. Entwicklung"),
	}
	return proj
}

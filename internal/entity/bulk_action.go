package entity

// ActionKind identifies the executor family a bulk action is bound to.
type ActionKind string

const (
	ActionKindRunTemplate ActionKind = "run_template"
	ActionKindExport      ActionKind = "export"
	ActionKindPublish     ActionKind = "publish"
)

// BulkAction is one entry of the static action catalog: a named operation
// applicable to the current selection, executed by an external system.
type BulkAction struct {
	ID          string
	Name        string
	Description string
	Kind        ActionKind
	// DefaultParams are merged under the params supplied at dispatch time
	// (template id, export column list, publish target).
	DefaultParams map[string]any
}

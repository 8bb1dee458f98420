package domain

import "strings"

// Well-known annotation keys written to every documented entity.
const (
	// AnnotationAIGenerated marks an entity whose description was generated.
	AnnotationAIGenerated = "AI_Generated_Docs"

	// AnnotationTechnicalNotes holds the generated technical explanation.
	AnnotationTechnicalNotes = "Technical_Notes"
)

// EntityRef identifies an entity within the semantic model.
type EntityRef struct {
	// Table is the container (table) the entity belongs to.
	Table string

	// Name is the entity name, unique within its table.
	Name string
}

// String returns the ref in 'Table'[Name] form.
func (r EntityRef) String() string {
	return "'" + r.Table + "'[" + r.Name + "]"
}

// Annotation is a key/value pair attached to an entity.
type Annotation struct {
	Key   string
	Value string
}

// Entity is a named unit of the semantic model, such as a measure.
type Entity struct {
	// Ref identifies the entity.
	Ref EntityRef

	// Expression is the entity logic (e.g. a DAX expression).
	// Listing operations may leave it empty; fetch the detail to populate it.
	Expression string

	// Description is the human-readable documentation.
	Description string

	// DisplayFolder is the categorisation tag.
	DisplayFolder string

	// Annotations holds key/value metadata. Keys are unique.
	Annotations []Annotation
}

// IsDocumented reports whether the entity already carries a description.
// Any non-blank description counts, whoever wrote it.
func (e *Entity) IsDocumented() bool {
	return strings.TrimSpace(e.Description) != ""
}

// Annotation returns the value stored under key.
func (e *Entity) Annotation(key string) (string, bool) {
	for _, a := range e.Annotations {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// SetAnnotation adds or replaces the annotation under key, keeping keys unique.
func (e *Entity) SetAnnotation(key, value string) {
	for i := range e.Annotations {
		if e.Annotations[i].Key == key {
			e.Annotations[i].Value = value
			return
		}
	}
	e.Annotations = append(e.Annotations, Annotation{Key: key, Value: value})
}

// EntityUpdate is a partial update. Nil fields are left unchanged on the server.
type EntityUpdate struct {
	Description   *string
	DisplayFolder *string
	Annotations   []Annotation
}

// Apply merges the update into e.
func (u EntityUpdate) Apply(e *Entity) {
	if u.Description != nil {
		e.Description = *u.Description
	}
	if u.DisplayFolder != nil {
		e.DisplayFolder = *u.DisplayFolder
	}
	for _, a := range u.Annotations {
		e.SetAnnotation(a.Key, a.Value)
	}
}

// DocumentationUpdate builds the update written for a freshly analysed entity.
func DocumentationUpdate(analysis *EntityAnalysis) EntityUpdate {
	description := analysis.Description
	folder := analysis.DisplayFolder
	return EntityUpdate{
		Description:   &description,
		DisplayFolder: &folder,
		Annotations: []Annotation{
			{Key: AnnotationAIGenerated, Value: "true"},
			{Key: AnnotationTechnicalNotes, Value: analysis.TechnicalNotes},
		},
	}
}

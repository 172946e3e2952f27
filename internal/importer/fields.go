package importer

// Field names an output column of a task record
type Field string

const (
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
	FieldStatus      Field = "status"
	FieldPriority    Field = "priority"
	FieldAssignee    Field = "assignee"
	FieldDueDate     Field = "dueDate"
	FieldProgress    Field = "progress"
)

// ColumnSpec pairs a field with the header fragments that locate it, most
// specific first.
type ColumnSpec struct {
	Field      Field    `json:"field"`
	Candidates []string `json:"candidates"`
}

// ColumnMap is the ordered field to candidates table used for a whole import
type ColumnMap []ColumnSpec

// DefaultColumns covers French and English headings. Accents are optional in
// the uploaded headers because matching folds diacritics.
var DefaultColumns = ColumnMap{
	{Field: FieldTitle, Candidates: []string{"tache", "tâche", "titre", "nom", "task", "title", "name"}},
	{Field: FieldDescription, Candidates: []string{"description", "desc", "details", "detail"}},
	{Field: FieldStatus, Candidates: []string{"statut", "status", "etat", "état"}},
	{Field: FieldPriority, Candidates: []string{"priorite", "priorité", "priority", "importance"}},
	{Field: FieldAssignee, Candidates: []string{"assignee", "responsable", "assigne", "assigné", "personne", "user", "utilisateur"}},
	{Field: FieldDueDate, Candidates: []string{"date_fin", "date fin", "due_date", "due date", "echeance", "échéance", "deadline", "fin"}},
	{Field: FieldProgress, Candidates: []string{"progres", "progrès", "progress", "pourcentage", "avancement", "completion", "%"}},
}

// Candidates returns the candidate list for f, or nil when f is not mapped
func (m ColumnMap) Candidates(f Field) []string {
	for _, spec := range m {
		if spec.Field == f {
			return spec.Candidates
		}
	}
	return nil
}

// With returns a copy of m where f uses the given candidates
func (m ColumnMap) With(f Field, candidates ...string) ColumnMap {
	out := make(ColumnMap, 0, len(m)+1)
	replaced := false
	for _, spec := range m {
		if spec.Field == f {
			spec = ColumnSpec{Field: f, Candidates: candidates}
			replaced = true
		}
		out = append(out, spec)
	}
	if !replaced {
		out = append(out, ColumnSpec{Field: f, Candidates: candidates})
	}
	return out
}

// Plan reports which header each field would read from a row where every
// column is filled in. Fields with no matching header are left out.
func (m ColumnMap) Plan(headers []string) map[Field]string {
	plan := make(map[Field]string, len(m))
	for _, spec := range m {
		if header, ok := firstMatchingHeader(headers, spec.Candidates); ok {
			plan[spec.Field] = header
		}
	}
	return plan
}

// Unmapped lists the non-blank headers that no field reads from a fully
// filled-in row. Secondary synonym columns show up here too.
func (m ColumnMap) Unmapped(headers []string) []string {
	used := make(map[string]bool)
	for _, header := range m.Plan(headers) {
		used[header] = true
	}

	var unmapped []string
	for _, h := range headers {
		if h != "" && !used[h] {
			unmapped = append(unmapped, h)
		}
	}
	return unmapped
}

func firstMatchingHeader(headers []string, candidates []string) (string, bool) {
	for _, candidate := range candidates {
		for _, h := range headers {
			if matchHeader(h, candidate) {
				return h, true
			}
		}
	}
	return "", false
}

package health

// Stable node IDs for report sections that carry sensitive metadata. The
// sanitizer locates these nodes by ID, never by display name.
const (
	NodeEnvVars        = "env_vars"
	NodeBuildArtifacts = "build_artifacts"
)

// EnvGroup lists which environment variables of one class are set.
type EnvGroup struct {
	Present []string
	Missing []string
}

// Total returns the number of variables in the group.
func (g EnvGroup) Total() int {
	return len(g.Present) + len(g.Missing)
}

func (g EnvGroup) toMap() map[string]any {
	present := g.Present
	if present == nil {
		present = []string{}
	}
	missing := g.Missing
	if missing == nil {
		missing = []string{}
	}
	return map[string]any{
		"present": append([]string(nil), present...),
		"missing": append([]string(nil), missing...),
		"total":   g.Total(),
	}
}

// EnvVarsMetadata is the metadata shape of the env_vars node.
type EnvVarsMetadata struct {
	Critical EnvGroup
	Optional EnvGroup
}

// Map renders the metadata into the open bag carried by a StatusNode.
func (m EnvVarsMetadata) Map() map[string]any {
	return map[string]any{
		"critical": m.Critical.toMap(),
		"optional": m.Optional.toMap(),
	}
}

// ArtifactCheck is one verified build artifact.
type ArtifactCheck struct {
	Path   string
	Exists bool
}

// BuildMetadata is the metadata shape of the build_artifacts node.
type BuildMetadata struct {
	Checks []ArtifactCheck
}

// Map renders the metadata into the open bag carried by a StatusNode.
func (m BuildMetadata) Map() map[string]any {
	checks := make([]any, 0, len(m.Checks))
	for _, c := range m.Checks {
		checks = append(checks, map[string]any{
			"path":   c.Path,
			"exists": c.Exists,
		})
	}
	return map[string]any{"checks": checks}
}

// StringList reads a list of strings out of an open metadata value. It
// accepts []string and []any (the shape produced by JSON decoding).
func StringList(v any) []string {
	switch val := v.(type) {
	case []string:
		return val
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// ListLen returns the length of a list-valued metadata entry, or 0.
func ListLen(v any) int {
	switch val := v.(type) {
	case []string:
		return len(val)
	case []any:
		return len(val)
	case []map[string]any:
		return len(val)
	default:
		return 0
	}
}

// IntValue reads a numeric metadata value as an int.
func IntValue(v any) int {
	switch val := v.(type) {
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		return int(val)
	case float32:
		return int(val)
	default:
		return 0
	}
}

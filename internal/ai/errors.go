package ai

// ParseError reports that no JSON object could be located in (or decoded
// from) free-text model output after every extraction strategy ran.
type ParseError struct {
	Msg string
}

func (e *ParseError) Error() string {
	return "parse error: " + e.Msg
}

// SchemaError reports JSON that decoded cleanly but violates the target
// schema: missing required fields, out-of-range values, or invalid enum
// tokens.
type SchemaError struct {
	Err error
}

func (e *SchemaError) Error() string {
	return "schema error: " + e.Err.Error()
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

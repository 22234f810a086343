package tg

// Params is the parameter mapping of one method invocation. Values may be
// scalars, JSON-marshalable composites, or file payloads (sender.InputFile).
// Built per call, never persisted.
type Params map[string]any

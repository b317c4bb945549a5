// Package ollama provides a backend for models served by a local Ollama
// instance. It needs no API key; the server URL defaults to
// http://localhost:11434.
package ollama

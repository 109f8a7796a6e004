// Package serializer provides JSON response writing for HTTP handlers and
// JSON/YAML (de)serialization of local files and streams.
//
// Responses are buffered before headers are written so an encoding failure
// never produces a partial body:
//
//	serializer.RespondJSON(w, http.StatusOK, items)
//
// Files are decoded with the format picked from their extension:
//
//	cfg, err := serializer.FromFile[config.File]("relay.yaml")
//
// Writer encodes values for humans, indented:
//
//	w, err := serializer.NewWriter(serializer.FormatYAML, os.Stdout)
//	err = w.Serialize(cfg)
package serializer

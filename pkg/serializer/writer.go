// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package serializer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Writer serializes values to an output stream in JSON or YAML.
type Writer struct {
	format Format
	output io.Writer
}

// NewWriter creates a Writer. A nil output writes to os.Stdout.
func NewWriter(format Format, output io.Writer) (*Writer, error) {
	if format.IsUnknown() {
		return nil, fmt.Errorf("unknown format: %q", format)
	}
	if output == nil {
		output = os.Stdout
	}
	return &Writer{format: format, output: output}, nil
}

// Serialize writes v in the Writer's format.
func (w *Writer) Serialize(v any) error {
	switch w.format {
	case FormatJSON:
		enc := json.NewEncoder(w.output)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to serialize to JSON: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w.output)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to serialize to YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to flush YAML: %w", err)
		}
	default:
		return fmt.Errorf("unsupported format: %s", w.format)
	}
	return nil
}

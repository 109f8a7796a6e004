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

package server

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strings"

	relayerrors "github.com/movie-relay/relay/pkg/errors"
)

// handleStatic serves regular files from StaticDir. Directories, missing
// files and paths escaping the root are all 404; there are no listings or
// index pages.
func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	if !AllowReadOnly(w, r) {
		return
	}

	name := strings.TrimPrefix(path.Clean("/"+strings.TrimPrefix(r.URL.Path, StaticPrefix)), "/")
	if name == "" {
		notFound(w, r)
		return
	}

	root, err := os.OpenRoot(s.config.StaticDir)
	if err != nil {
		slog.Warn("static directory unavailable", "dir", s.config.StaticDir, "error", err)
		notFound(w, r)
		return
	}
	defer root.Close()

	f, err := root.Open(name)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Debug("static open failed", "name", name, "error", err)
		}
		notFound(w, r)
		return
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil || !fi.Mode().IsRegular() {
		notFound(w, r)
		return
	}

	http.ServeContent(w, r, fi.Name(), fi.ModTime(), f)
}

func notFound(w http.ResponseWriter, r *http.Request) {
	WriteError(w, r, http.StatusNotFound, relayerrors.ErrCodeNotFound, "Not Found", false,
		map[string]any{"path": r.URL.Path})
}

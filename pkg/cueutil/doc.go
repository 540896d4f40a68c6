// SPDX-License-Identifier: MPL-2.0

// Package cueutil holds the CUE parsing helpers shared by the taskfile and
// config loaders.
//
// Loading a CUE document always follows the same steps: compile the embedded
// schema, compile the user document, unify the two under a root definition,
// validate, and decode into a Go value.
//
//	//go:embed taskfile_schema.cue
//	var schema []byte
//
//	res, err := cueutil.ParseAndDecode[Taskfile](schema, data, "#Taskfile",
//		cueutil.WithFilename("taskdeck.cue"))
//	if err != nil {
//		return nil, err // errors carry "<file>: <path>: <message>"
//	}
//	return res.Value, nil
package cueutil

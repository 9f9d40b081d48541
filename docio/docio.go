// Package docio moves whole JSON documents in and out of a store. Imports
// merge field by field through the public write contract so per-field
// permissions stay enforced; exports resolve each readable path, invoking
// producers along the way.
package docio

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	secstore "github.com/goliatone/go-secstore"
)

// ErrNotAnObject indicates the imported document is not a JSON object.
var ErrNotAnObject = errors.New("docio: document must be a JSON object")

// Import merges doc into store. Every leaf of the document becomes one
// Write at the corresponding store path; object values descend so sibling
// fields already in the store survive. The first failing write stops the
// import but earlier writes stay applied.
func Import(store *secstore.Store, doc []byte) error {
	if store == nil {
		return fmt.Errorf("docio: store is required")
	}
	if !gjson.ValidBytes(doc) {
		return fmt.Errorf("docio: invalid json document")
	}
	root := gjson.ParseBytes(doc)
	if !root.IsObject() {
		return ErrNotAnObject
	}
	return importObject(store, "", root)
}

func importObject(store *secstore.Store, prefix string, obj gjson.Result) error {
	var importErr error
	obj.ForEach(func(key, value gjson.Result) bool {
		path := joinStorePath(prefix, key.String())
		if value.IsObject() {
			importErr = importObject(store, path, value)
			return importErr == nil
		}
		if _, err := store.Write(path, value.Value()); err != nil {
			importErr = fmt.Errorf("docio: import %q: %w", path, err)
			return false
		}
		return true
	})
	return importErr
}

// Export renders the store's readable fields into a JSON document. Values
// are resolved through Read, so producers contribute their computed values;
// unreadable fields are skipped silently.
func Export(store *secstore.Store) ([]byte, error) {
	if store == nil {
		return nil, fmt.Errorf("docio: store is required")
	}
	out := []byte(`{}`)
	var err error
	out, err = exportStore(store, "", "", out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func exportStore(node *secstore.Store, storePrefix, jsonPrefix string, out []byte) ([]byte, error) {
	for _, name := range node.Fields() {
		if !node.AllowedToRead(name) {
			continue
		}
		storePath := joinStorePath(storePrefix, name)
		jsonPath := joinJSONPath(jsonPrefix, name)

		value, err := node.Read(name)
		if err != nil {
			var denied *secstore.AccessError
			if errors.As(err, &denied) {
				continue
			}
			return nil, fmt.Errorf("docio: export %q: %w", storePath, err)
		}
		if child, ok := value.(*secstore.Store); ok {
			out, err = exportStore(child, storePath, jsonPath, out)
			if err != nil {
				return nil, err
			}
			continue
		}
		out, err = sjson.SetBytes(out, jsonPath, value)
		if err != nil {
			return nil, fmt.Errorf("docio: export %q: %w", storePath, err)
		}
	}
	return out, nil
}

func joinStorePath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return secstore.JoinPath(prefix, name)
}

// joinJSONPath escapes sjson path syntax inside field names so dotted keys
// stay single fields in the output document.
func joinJSONPath(prefix, name string) string {
	escaped := strings.NewReplacer(".", `\.`, "*", `\*`, "?", `\?`, "|", `\|`).Replace(name)
	if prefix == "" {
		return escaped
	}
	return prefix + "." + escaped
}

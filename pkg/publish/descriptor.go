package publish

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iancoleman/orderedmap"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// DescriptorVersion maps the previous release patch to the integer Version
// field of the plugin descriptor.
func DescriptorVersion(previousPatch uint64) int {
	return int(previousPatch) + 2
}

// DescriptorPath returns {workspace}/{publishDir}/{project}.uplugin
func DescriptorPath(workspace, publishDir, project string) string {
	return filepath.Join(workspace, publishDir, project+".uplugin")
}

// StampDescriptor sets Version and VersionName in a plugin descriptor. Every
// other field and the key order are preserved; the file is rewritten with a
// two-space indent and without HTML escaping.
func StampDescriptor(path string, version int, versionName string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read descriptor: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	doc := orderedmap.New()
	doc.SetEscapeHTML(false)
	if err := json.Unmarshal(data, doc); err != nil {
		return fmt.Errorf("parse descriptor %s: %w", path, err)
	}

	doc.Set("Version", version)
	doc.Set("VersionName", versionName)

	out, err := encodeDescriptor(doc)
	if err != nil {
		return fmt.Errorf("encode descriptor: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, out, info.Mode().Perm()); err != nil {
		return fmt.Errorf("write descriptor: %w", err)
	}
	return nil
}

func encodeDescriptor(doc *orderedmap.OrderedMap) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

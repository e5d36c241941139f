// Package handoff carries validated documents to the generation and
// persistence collaborators.
package handoff

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
)

// Multipart part names and file names expected by the generator.
const (
	AppConfigPart    = "appConfig"
	EntityConfigPart = "entityConfig"
	AppConfigFile    = "app-config.json"
	EntityConfigFile = "entity-config.json"
)

// Bundle holds both serialized documents.
type Bundle struct {
	AppConfig    []byte
	EntityConfig []byte
}

// Empty reports whether the bundle holds no documents.
func (b Bundle) Empty() bool { return len(b.AppConfig) == 0 && len(b.EntityConfig) == 0 }

// WriteMultipart writes both documents as file parts and returns the
// request content type. extra adds plain form fields.
func (b Bundle) WriteMultipart(w io.Writer, extra map[string]string) (string, error) {
	mw := multipart.NewWriter(w)
	for _, p := range []struct {
		field, file string
		body        []byte
	}{
		{EntityConfigPart, EntityConfigFile, b.EntityConfig},
		{AppConfigPart, AppConfigFile, b.AppConfig},
	} {
		fw, err := mw.CreateFormFile(p.field, p.file)
		if err != nil {
			return "", fmt.Errorf("create part %s: %w", p.field, err)
		}
		if _, err := fw.Write(p.body); err != nil {
			return "", fmt.Errorf("write part %s: %w", p.field, err)
		}
	}
	for k, v := range extra {
		if err := mw.WriteField(k, v); err != nil {
			return "", fmt.Errorf("write field %s: %w", k, err)
		}
	}
	if err := mw.Close(); err != nil {
		return "", err
	}
	return mw.FormDataContentType(), nil
}

// Multipart renders the bundle into a buffer.
func (b Bundle) Multipart(extra map[string]string) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	ct, err := b.WriteMultipart(&buf, extra)
	if err != nil {
		return nil, "", err
	}
	return &buf, ct, nil
}

// WriteDir writes app-config.json and entity-config.json into dir.
func (b Bundle) WriteDir(dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, AppConfigFile), b.AppConfig, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", AppConfigFile, err)
	}
	if err := os.WriteFile(filepath.Join(dir, EntityConfigFile), b.EntityConfig, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", EntityConfigFile, err)
	}
	return nil
}

// ReadDir loads a bundle previously written with WriteDir.
func ReadDir(dir string) (Bundle, error) {
	app, err := os.ReadFile(filepath.Join(dir, AppConfigFile))
	if err != nil {
		return Bundle{}, fmt.Errorf("read %s: %w", AppConfigFile, err)
	}
	graph, err := os.ReadFile(filepath.Join(dir, EntityConfigFile))
	if err != nil {
		return Bundle{}, fmt.Errorf("read %s: %w", EntityConfigFile, err)
	}
	return Bundle{AppConfig: app, EntityConfig: graph}, nil
}

// ParseMultipart reads a bundle from a multipart body with the given
// boundary.
func ParseMultipart(r io.Reader, boundary string) (Bundle, error) {
	var b Bundle
	mr := multipart.NewReader(r, boundary)
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Bundle{}, fmt.Errorf("read part: %w", err)
		}
		body, err := io.ReadAll(part)
		if err != nil {
			return Bundle{}, fmt.Errorf("read part %s: %w", part.FormName(), err)
		}
		switch part.FormName() {
		case AppConfigPart:
			b.AppConfig = body
		case EntityConfigPart:
			b.EntityConfig = body
		}
	}
	if len(b.AppConfig) == 0 || len(b.EntityConfig) == 0 {
		return Bundle{}, fmt.Errorf("bundle requires both %s and %s parts", AppConfigPart, EntityConfigPart)
	}
	return b, nil
}

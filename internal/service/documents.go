package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// DocumentRole says what kind of records a document holds
type DocumentRole string

const (
	RoleBankStatement DocumentRole = "bank_statement"
	RoleUtilityBill   DocumentRole = "utility_bill"
	RoleWallet        DocumentRole = "wallet"
)

// Document is one uploaded file tagged with its role
type Document struct {
	Role DocumentRole
	Name string
	Open func() (io.ReadCloser, error)
}

// TextDocument wraps text that is already in memory
func TextDocument(role DocumentRole, name, text string) Document {
	return Document{
		Role: role,
		Name: name,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(text)), nil
		},
	}
}

// PositionalDocuments tags texts the legacy way: the first is the bank
// statement and every other one is a utility bill.
func PositionalDocuments(texts []string) []Document {
	docs := make([]Document, 0, len(texts))
	for i, text := range texts {
		role := RoleUtilityBill
		if i == 0 {
			role = RoleBankStatement
		}
		docs = append(docs, TextDocument(role, fmt.Sprintf("file-%d", i+1), text))
	}
	return docs
}

// loadedDocument is a document read into memory. A failed read is kept as a
// reader that returns the error so the parser can apply its own fallback.
type loadedDocument struct {
	role   DocumentRole
	name   string
	reader io.Reader
	err    error
}

type failedReader struct{ err error }

func (f failedReader) Read([]byte) (int, error) { return 0, f.err }

// readDocuments reads every document concurrently, preserving input order
func readDocuments(ctx context.Context, docs []Document) []loadedDocument {
	loaded := make([]loadedDocument, len(docs))
	var wg sync.WaitGroup
	for i, doc := range docs {
		wg.Add(1)
		go func(i int, doc Document) {
			defer wg.Done()
			text, err := readDocument(ctx, doc)
			loaded[i] = loadedDocument{role: doc.Role, name: doc.Name, err: err}
			if err != nil {
				loaded[i].reader = failedReader{err: err}
				return
			}
			loaded[i].reader = strings.NewReader(text)
		}(i, doc)
	}
	wg.Wait()
	return loaded
}

func readDocument(ctx context.Context, doc Document) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reading %s panicked: %v", doc.Name, r)
		}
	}()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if doc.Open == nil {
		return "", fmt.Errorf("document %s has no content", doc.Name)
	}
	rc, err := doc.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", doc.Name, err)
	}
	defer rc.Close()

	b, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", doc.Name, err)
	}
	return string(b), nil
}

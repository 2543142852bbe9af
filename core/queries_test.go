package core

import (
	"context"
	"testing"
)

func TestGetDocument_AggregatesSignaturesAndFields(t *testing.T) {
	stores := newMemoryStores()
	svc := newTestService(t, stores)

	document, signatures := setupPendingDocument(t, svc, "alice@example.com", "bob@example.com")
	if _, err := svc.AddFields(context.Background(), document.ID, []DocumentField{
		{FieldType: FieldTypeSignature, SignerEmail: "alice@example.com", Page: 1},
	}); err != nil {
		t.Fatalf("add fields: %v", err)
	}

	detail, err := svc.GetDocument(context.Background(), document.ID)
	if err != nil {
		t.Fatalf("get document: %v", err)
	}
	if detail.Document.ID != document.ID {
		t.Fatalf("unexpected document: %#v", detail.Document)
	}
	if len(detail.Signatures) != len(signatures) {
		t.Fatalf("expected %d signatures, got %d", len(signatures), len(detail.Signatures))
	}
	if len(detail.Fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(detail.Fields))
	}
}

func TestDocumentFile_ResolvesStoredBytes(t *testing.T) {
	stores := newMemoryStores()
	payload := []byte("%PDF-1.7 body")
	svc := newTestService(t, stores, WithBlobResolver(stubBlobResolver{
		blobs: map[string][]byte{"abc123": payload},
	}))

	document, err := svc.CreateDocument(context.Background(), CreateDocumentInput{
		OwnerID:  "owner_1",
		FileHash: "abc123",
	})
	if err != nil {
		t.Fatalf("create document: %v", err)
	}

	data, err := svc.DocumentFile(context.Background(), document.ID)
	if err != nil {
		t.Fatalf("document file: %v", err)
	}
	if string(data) != string(payload) {
		t.Fatalf("unexpected file bytes: %q", data)
	}
}

func TestDocumentFile_RequiresBlobResolver(t *testing.T) {
	stores := newMemoryStores()
	svc := newTestService(t, stores)

	document, err := svc.CreateDocument(context.Background(), CreateDocumentInput{
		OwnerID:  "owner_1",
		FileHash: "abc123",
	})
	if err != nil {
		t.Fatalf("create document: %v", err)
	}
	if _, err := svc.DocumentFile(context.Background(), document.ID); err == nil {
		t.Fatalf("expected missing blob resolver error")
	}
}

func TestListAuditTrail_ReturnsLifecycleEntries(t *testing.T) {
	stores := newMemoryStores()
	svc := newTestService(t, stores)

	document, signatures := setupPendingDocument(t, svc, "alice@example.com")
	if _, err := svc.SubmitSignature(context.Background(), SubmitSignatureRequest{
		Token:         signatures[0].Token,
		SignatureData: "data:image/png;base64,AAAA",
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	entries, err := svc.ListAuditTrail(context.Background(), document.ID)
	if err != nil {
		t.Fatalf("list audit trail: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected sent and signed entries, got %#v", entries)
	}
	if entries[0].EventType != EventDocumentSent || entries[1].EventType != EventDocumentSigned {
		t.Fatalf("unexpected audit order: %#v", entries)
	}

	if _, err := svc.ListAuditTrail(context.Background(), "missing"); err == nil {
		t.Fatalf("expected not-found rejection for unknown document")
	}
}

package command

import (
	"context"
	"fmt"
	"testing"

	gocmd "github.com/goliatone/go-command"
	"github.com/trazahq/go-signing/core"
)

func TestCreateDocumentCommand_ExecuteDelegatesAndStoresResult(t *testing.T) {
	expected := core.Document{ID: "doc_1", OwnerID: "owner_1", Title: "NDA"}
	called := false

	svc := stubMutatingService{
		createDocumentFn: func(_ context.Context, in core.CreateDocumentInput) (core.Document, error) {
			called = true
			if in.OwnerID != "owner_1" {
				t.Fatalf("expected owner owner_1, got %q", in.OwnerID)
			}
			return expected, nil
		},
	}

	cmd := NewCreateDocumentCommand(svc)
	collector := gocmd.NewResult[core.Document]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	err := cmd.Execute(ctx, CreateDocumentMessage{Input: core.CreateDocumentInput{
		OwnerID:  "owner_1",
		Title:    "NDA",
		FileHash: "abc123",
	}})
	if err != nil {
		t.Fatalf("execute create document: %v", err)
	}
	if !called {
		t.Fatalf("expected create document service invocation")
	}
	result, ok := collector.Load()
	if !ok {
		t.Fatalf("expected result to be stored")
	}
	if result.ID != expected.ID || result.Title != expected.Title {
		t.Fatalf("unexpected result: %#v", result)
	}
}

func TestDocumentCommands_DelegateToService(t *testing.T) {
	t.Run("add fields", func(t *testing.T) {
		called := false
		svc := stubMutatingService{
			addFieldsFn: func(_ context.Context, documentID string, fields []core.DocumentField) ([]core.DocumentField, error) {
				called = true
				if documentID != "doc_1" || len(fields) != 2 {
					t.Fatalf("unexpected add fields payload: %q %d", documentID, len(fields))
				}
				return fields, nil
			},
		}
		cmd := NewAddFieldsCommand(svc)
		collector := gocmd.NewResult[[]core.DocumentField]()
		ctx := gocmd.ContextWithResult(context.Background(), collector)
		err := cmd.Execute(ctx, AddFieldsMessage{
			DocumentID: "doc_1",
			Fields: []core.DocumentField{
				{FieldType: core.FieldTypeSignature, SignerEmail: "a@example.com", Page: 1},
				{FieldType: core.FieldTypeDate, SignerEmail: "a@example.com", Page: 1},
			},
		})
		if err != nil {
			t.Fatalf("execute add fields: %v", err)
		}
		if !called {
			t.Fatalf("expected add fields invocation")
		}
		stored, ok := collector.Load()
		if !ok || len(stored) != 2 {
			t.Fatalf("expected stored fields, got %#v", stored)
		}
	})

	t.Run("send for signing", func(t *testing.T) {
		expected := core.SendForSigningResult{
			Document:   core.Document{ID: "doc_1", Status: core.DocumentStatusPending},
			Signatures: []core.Signature{{ID: "sig_1", SignerEmail: "a@example.com"}},
		}
		called := false
		svc := stubMutatingService{
			sendForSigningFn: func(_ context.Context, req core.SendForSigningRequest) (core.SendForSigningResult, error) {
				called = true
				if req.DocumentID != "doc_1" || len(req.Signers) != 1 {
					t.Fatalf("unexpected send payload: %#v", req)
				}
				return expected, nil
			},
		}
		cmd := NewSendForSigningCommand(svc)
		collector := gocmd.NewResult[core.SendForSigningResult]()
		ctx := gocmd.ContextWithResult(context.Background(), collector)
		err := cmd.Execute(ctx, SendForSigningMessage{Request: core.SendForSigningRequest{
			DocumentID:    "doc_1",
			Signers:       []core.SignerInput{{Email: "a@example.com", Name: "Alice"}},
			ExpiresInDays: 14,
		}})
		if err != nil {
			t.Fatalf("execute send for signing: %v", err)
		}
		if !called {
			t.Fatalf("expected send for signing invocation")
		}
		stored, ok := collector.Load()
		if !ok {
			t.Fatalf("expected send result")
		}
		if stored.Document.ID != expected.Document.ID || len(stored.Signatures) != 1 {
			t.Fatalf("unexpected send result: %#v", stored)
		}
	})

	t.Run("void", func(t *testing.T) {
		called := false
		svc := stubMutatingService{
			voidFn: func(_ context.Context, documentID string, actorID string) (core.Document, error) {
				called = true
				if documentID != "doc_1" || actorID != "owner_1" {
					t.Fatalf("unexpected void payload: %q %q", documentID, actorID)
				}
				return core.Document{ID: documentID, Status: core.DocumentStatusVoid}, nil
			},
		}
		cmd := NewVoidDocumentCommand(svc)
		if err := cmd.Execute(context.Background(), VoidDocumentMessage{DocumentID: "doc_1", ActorID: "owner_1"}); err != nil {
			t.Fatalf("execute void: %v", err)
		}
		if !called {
			t.Fatalf("expected void invocation")
		}
	})
}

func TestSignatureCommands_DelegateToService(t *testing.T) {
	t.Run("resend", func(t *testing.T) {
		called := false
		svc := stubMutatingService{
			resendFn: func(_ context.Context, signatureID string, expiresInDays int) (core.Signature, error) {
				called = true
				if signatureID != "sig_1" || expiresInDays != 7 {
					t.Fatalf("unexpected resend payload: %q %d", signatureID, expiresInDays)
				}
				return core.Signature{ID: signatureID}, nil
			},
		}
		cmd := NewResendSignatureCommand(svc)
		if err := cmd.Execute(context.Background(), ResendSignatureMessage{SignatureID: "sig_1", ExpiresInDays: 7}); err != nil {
			t.Fatalf("execute resend: %v", err)
		}
		if !called {
			t.Fatalf("expected resend invocation")
		}
	})

	t.Run("mark viewed", func(t *testing.T) {
		called := false
		svc := stubMutatingService{
			markViewedFn: func(_ context.Context, token string) error {
				called = true
				if token != "tkn_1" {
					t.Fatalf("unexpected token: %q", token)
				}
				return nil
			},
		}
		cmd := NewMarkViewedCommand(svc)
		if err := cmd.Execute(context.Background(), MarkViewedMessage{Token: "tkn_1"}); err != nil {
			t.Fatalf("execute mark viewed: %v", err)
		}
		if !called {
			t.Fatalf("expected mark viewed invocation")
		}
	})

	t.Run("submit", func(t *testing.T) {
		expected := core.SubmitSignatureResult{
			Signature:         core.Signature{ID: "sig_1", Status: core.SignatureStatusSigned},
			Document:          core.Document{ID: "doc_1", Status: core.DocumentStatusSigned},
			DocumentCompleted: true,
		}
		called := false
		svc := stubMutatingService{
			submitSignatureFn: func(_ context.Context, req core.SubmitSignatureRequest) (core.SubmitSignatureResult, error) {
				called = true
				if req.Token != "tkn_1" || req.SignatureData == "" {
					t.Fatalf("unexpected submit payload: %#v", req)
				}
				return expected, nil
			},
		}
		cmd := NewSubmitSignatureCommand(svc)
		collector := gocmd.NewResult[core.SubmitSignatureResult]()
		ctx := gocmd.ContextWithResult(context.Background(), collector)
		err := cmd.Execute(ctx, SubmitSignatureMessage{Request: core.SubmitSignatureRequest{
			Token:         "tkn_1",
			SignatureData: "data:image/png;base64,AAAA",
			SignerIP:      "203.0.113.9",
		}})
		if err != nil {
			t.Fatalf("execute submit: %v", err)
		}
		if !called {
			t.Fatalf("expected submit invocation")
		}
		stored, ok := collector.Load()
		if !ok {
			t.Fatalf("expected submit result")
		}
		if !stored.DocumentCompleted || stored.Signature.ID != expected.Signature.ID {
			t.Fatalf("unexpected submit result: %#v", stored)
		}
	})

	t.Run("decline", func(t *testing.T) {
		called := false
		svc := stubMutatingService{
			declineSignatureFn: func(_ context.Context, req core.DeclineSignatureRequest) (core.Signature, error) {
				called = true
				if req.Token != "tkn_1" || req.Reason != "wrong terms" {
					t.Fatalf("unexpected decline payload: %#v", req)
				}
				return core.Signature{ID: "sig_1", Status: core.SignatureStatusDeclined}, nil
			},
		}
		cmd := NewDeclineSignatureCommand(svc)
		if err := cmd.Execute(context.Background(), DeclineSignatureMessage{Request: core.DeclineSignatureRequest{
			Token:  "tkn_1",
			Reason: "wrong terms",
		}}); err != nil {
			t.Fatalf("execute decline: %v", err)
		}
		if !called {
			t.Fatalf("expected decline invocation")
		}
	})
}

func TestWebhookCommands_DelegateToService(t *testing.T) {
	t.Run("register", func(t *testing.T) {
		expected := core.RegisterWebhookResult{
			Webhook: core.Webhook{ID: "wh_1", OwnerID: "owner_1", URL: "https://example.com/hooks"},
			Secret:  "whsec_abc",
		}
		called := false
		svc := stubMutatingService{
			registerWebhookFn: func(_ context.Context, req core.RegisterWebhookRequest) (core.RegisterWebhookResult, error) {
				called = true
				if req.URL != "https://example.com/hooks" {
					t.Fatalf("unexpected register payload: %#v", req)
				}
				return expected, nil
			},
		}
		cmd := NewRegisterWebhookCommand(svc)
		collector := gocmd.NewResult[core.RegisterWebhookResult]()
		ctx := gocmd.ContextWithResult(context.Background(), collector)
		err := cmd.Execute(ctx, RegisterWebhookMessage{Request: core.RegisterWebhookRequest{
			OwnerID: "owner_1",
			URL:     "https://example.com/hooks",
			Events:  []string{core.EventDocumentCompleted},
		}})
		if err != nil {
			t.Fatalf("execute register webhook: %v", err)
		}
		if !called {
			t.Fatalf("expected register webhook invocation")
		}
		stored, ok := collector.Load()
		if !ok {
			t.Fatalf("expected register result")
		}
		if stored.Secret != expected.Secret {
			t.Fatalf("unexpected register result: %#v", stored)
		}
	})

	t.Run("deactivate", func(t *testing.T) {
		called := false
		svc := stubMutatingService{
			deactivateWebhookFn: func(_ context.Context, webhookID string) error {
				called = true
				if webhookID != "wh_1" {
					t.Fatalf("unexpected webhook id: %q", webhookID)
				}
				return nil
			},
		}
		cmd := NewDeactivateWebhookCommand(svc)
		if err := cmd.Execute(context.Background(), DeactivateWebhookMessage{WebhookID: "wh_1"}); err != nil {
			t.Fatalf("execute deactivate webhook: %v", err)
		}
		if !called {
			t.Fatalf("expected deactivate webhook invocation")
		}
	})
}

func TestCommands_MissingServiceReturnsDependencyError(t *testing.T) {
	if err := NewCreateDocumentCommand(nil).Execute(context.Background(), CreateDocumentMessage{}); err == nil {
		t.Fatalf("expected dependency error for create document")
	}
	if err := NewSubmitSignatureCommand(nil).Execute(context.Background(), SubmitSignatureMessage{}); err == nil {
		t.Fatalf("expected dependency error for submit signature")
	}
	if err := NewDeactivateWebhookCommand(nil).Execute(context.Background(), DeactivateWebhookMessage{}); err == nil {
		t.Fatalf("expected dependency error for deactivate webhook")
	}
}

func TestMessages_Validate(t *testing.T) {
	cases := []struct {
		name    string
		message interface{ Validate() error }
		wantErr bool
	}{
		{"create document ok", CreateDocumentMessage{Input: core.CreateDocumentInput{OwnerID: "o", FileHash: "h"}}, false},
		{"create document missing hash", CreateDocumentMessage{Input: core.CreateDocumentInput{OwnerID: "o"}}, true},
		{"add fields empty", AddFieldsMessage{DocumentID: "doc_1"}, true},
		{"send missing signer email", SendForSigningMessage{Request: core.SendForSigningRequest{
			DocumentID: "doc_1",
			Signers:    []core.SignerInput{{Name: "Alice"}},
		}}, true},
		{"submit without payload", SubmitSignatureMessage{Request: core.SubmitSignatureRequest{Token: "tkn"}}, true},
		{"submit with field values", SubmitSignatureMessage{Request: core.SubmitSignatureRequest{
			Token:       "tkn",
			FieldValues: map[string]string{"fld_1": "Alice"},
		}}, false},
		{"register webhook no events", RegisterWebhookMessage{Request: core.RegisterWebhookRequest{
			OwnerID: "o",
			URL:     "https://example.com",
		}}, true},
		{"deactivate webhook blank id", DeactivateWebhookMessage{WebhookID: "  "}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.message.Validate()
			if tc.wantErr && err == nil {
				t.Fatalf("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}

type stubMutatingService struct {
	createDocumentFn    func(ctx context.Context, in core.CreateDocumentInput) (core.Document, error)
	addFieldsFn         func(ctx context.Context, documentID string, fields []core.DocumentField) ([]core.DocumentField, error)
	sendForSigningFn    func(ctx context.Context, req core.SendForSigningRequest) (core.SendForSigningResult, error)
	voidFn              func(ctx context.Context, documentID string, actorID string) (core.Document, error)
	resendFn            func(ctx context.Context, signatureID string, expiresInDays int) (core.Signature, error)
	markViewedFn        func(ctx context.Context, token string) error
	submitSignatureFn   func(ctx context.Context, req core.SubmitSignatureRequest) (core.SubmitSignatureResult, error)
	declineSignatureFn  func(ctx context.Context, req core.DeclineSignatureRequest) (core.Signature, error)
	registerWebhookFn   func(ctx context.Context, req core.RegisterWebhookRequest) (core.RegisterWebhookResult, error)
	deactivateWebhookFn func(ctx context.Context, webhookID string) error
}

func (s stubMutatingService) CreateDocument(ctx context.Context, in core.CreateDocumentInput) (core.Document, error) {
	if s.createDocumentFn == nil {
		return core.Document{}, fmt.Errorf("create document not configured")
	}
	return s.createDocumentFn(ctx, in)
}

func (s stubMutatingService) AddFields(ctx context.Context, documentID string, fields []core.DocumentField) ([]core.DocumentField, error) {
	if s.addFieldsFn == nil {
		return nil, fmt.Errorf("add fields not configured")
	}
	return s.addFieldsFn(ctx, documentID, fields)
}

func (s stubMutatingService) SendForSigning(ctx context.Context, req core.SendForSigningRequest) (core.SendForSigningResult, error) {
	if s.sendForSigningFn == nil {
		return core.SendForSigningResult{}, fmt.Errorf("send for signing not configured")
	}
	return s.sendForSigningFn(ctx, req)
}

func (s stubMutatingService) Void(ctx context.Context, documentID string, actorID string) (core.Document, error) {
	if s.voidFn == nil {
		return core.Document{}, fmt.Errorf("void not configured")
	}
	return s.voidFn(ctx, documentID, actorID)
}

func (s stubMutatingService) Resend(ctx context.Context, signatureID string, expiresInDays int) (core.Signature, error) {
	if s.resendFn == nil {
		return core.Signature{}, fmt.Errorf("resend not configured")
	}
	return s.resendFn(ctx, signatureID, expiresInDays)
}

func (s stubMutatingService) MarkViewed(ctx context.Context, token string) error {
	if s.markViewedFn == nil {
		return fmt.Errorf("mark viewed not configured")
	}
	return s.markViewedFn(ctx, token)
}

func (s stubMutatingService) SubmitSignature(ctx context.Context, req core.SubmitSignatureRequest) (core.SubmitSignatureResult, error) {
	if s.submitSignatureFn == nil {
		return core.SubmitSignatureResult{}, fmt.Errorf("submit signature not configured")
	}
	return s.submitSignatureFn(ctx, req)
}

func (s stubMutatingService) DeclineSignature(ctx context.Context, req core.DeclineSignatureRequest) (core.Signature, error) {
	if s.declineSignatureFn == nil {
		return core.Signature{}, fmt.Errorf("decline signature not configured")
	}
	return s.declineSignatureFn(ctx, req)
}

func (s stubMutatingService) RegisterWebhook(ctx context.Context, req core.RegisterWebhookRequest) (core.RegisterWebhookResult, error) {
	if s.registerWebhookFn == nil {
		return core.RegisterWebhookResult{}, fmt.Errorf("register webhook not configured")
	}
	return s.registerWebhookFn(ctx, req)
}

func (s stubMutatingService) DeactivateWebhook(ctx context.Context, webhookID string) error {
	if s.deactivateWebhookFn == nil {
		return fmt.Errorf("deactivate webhook not configured")
	}
	return s.deactivateWebhookFn(ctx, webhookID)
}

var _ MutatingService = stubMutatingService{}

package command

import (
	"fmt"
	"strings"

	"github.com/trazahq/go-signing/core"
)

const (
	TypeCreateDocument    = "signing.command.document.create"
	TypeAddFields         = "signing.command.document.add_fields"
	TypeSendForSigning    = "signing.command.document.send"
	TypeVoidDocument      = "signing.command.document.void"
	TypeResendSignature   = "signing.command.signature.resend"
	TypeMarkViewed        = "signing.command.signature.mark_viewed"
	TypeSubmitSignature   = "signing.command.signature.submit"
	TypeDeclineSignature  = "signing.command.signature.decline"
	TypeRegisterWebhook   = "signing.command.webhook.register"
	TypeDeactivateWebhook = "signing.command.webhook.deactivate"
)

type CreateDocumentMessage struct {
	Input core.CreateDocumentInput
}

func (CreateDocumentMessage) Type() string { return TypeCreateDocument }

func (m CreateDocumentMessage) Validate() error {
	if strings.TrimSpace(m.Input.OwnerID) == "" {
		return fmt.Errorf("command: document owner is required")
	}
	if strings.TrimSpace(m.Input.FileHash) == "" {
		return fmt.Errorf("command: document file hash is required")
	}
	return nil
}

type AddFieldsMessage struct {
	DocumentID string
	Fields     []core.DocumentField
}

func (AddFieldsMessage) Type() string { return TypeAddFields }

func (m AddFieldsMessage) Validate() error {
	if strings.TrimSpace(m.DocumentID) == "" {
		return fmt.Errorf("command: document id is required")
	}
	if len(m.Fields) == 0 {
		return fmt.Errorf("command: at least one field is required")
	}
	return nil
}

type SendForSigningMessage struct {
	Request core.SendForSigningRequest
}

func (SendForSigningMessage) Type() string { return TypeSendForSigning }

func (m SendForSigningMessage) Validate() error {
	if strings.TrimSpace(m.Request.DocumentID) == "" {
		return fmt.Errorf("command: document id is required")
	}
	if len(m.Request.Signers) == 0 {
		return fmt.Errorf("command: at least one signer is required")
	}
	for _, signer := range m.Request.Signers {
		if strings.TrimSpace(signer.Email) == "" {
			return fmt.Errorf("command: signer email is required")
		}
	}
	return nil
}

type VoidDocumentMessage struct {
	DocumentID string
	ActorID    string
}

func (VoidDocumentMessage) Type() string { return TypeVoidDocument }

func (m VoidDocumentMessage) Validate() error {
	if strings.TrimSpace(m.DocumentID) == "" {
		return fmt.Errorf("command: document id is required")
	}
	return nil
}

type ResendSignatureMessage struct {
	SignatureID   string
	ExpiresInDays int
}

func (ResendSignatureMessage) Type() string { return TypeResendSignature }

func (m ResendSignatureMessage) Validate() error {
	if strings.TrimSpace(m.SignatureID) == "" {
		return fmt.Errorf("command: signature id is required")
	}
	return nil
}

type MarkViewedMessage struct {
	Token string
}

func (MarkViewedMessage) Type() string { return TypeMarkViewed }

func (m MarkViewedMessage) Validate() error {
	if strings.TrimSpace(m.Token) == "" {
		return fmt.Errorf("command: signing token is required")
	}
	return nil
}

type SubmitSignatureMessage struct {
	Request core.SubmitSignatureRequest
}

func (SubmitSignatureMessage) Type() string { return TypeSubmitSignature }

func (m SubmitSignatureMessage) Validate() error {
	if strings.TrimSpace(m.Request.Token) == "" {
		return fmt.Errorf("command: signing token is required")
	}
	if strings.TrimSpace(m.Request.SignatureData) == "" && len(m.Request.FieldValues) == 0 {
		return fmt.Errorf("command: signature data or field values are required")
	}
	return nil
}

type DeclineSignatureMessage struct {
	Request core.DeclineSignatureRequest
}

func (DeclineSignatureMessage) Type() string { return TypeDeclineSignature }

func (m DeclineSignatureMessage) Validate() error {
	if strings.TrimSpace(m.Request.Token) == "" {
		return fmt.Errorf("command: signing token is required")
	}
	return nil
}

type RegisterWebhookMessage struct {
	Request core.RegisterWebhookRequest
}

func (RegisterWebhookMessage) Type() string { return TypeRegisterWebhook }

func (m RegisterWebhookMessage) Validate() error {
	if strings.TrimSpace(m.Request.OwnerID) == "" {
		return fmt.Errorf("command: webhook owner is required")
	}
	if strings.TrimSpace(m.Request.URL) == "" {
		return fmt.Errorf("command: webhook url is required")
	}
	if len(m.Request.Events) == 0 {
		return fmt.Errorf("command: at least one event type is required")
	}
	return nil
}

type DeactivateWebhookMessage struct {
	WebhookID string
}

func (DeactivateWebhookMessage) Type() string { return TypeDeactivateWebhook }

func (m DeactivateWebhookMessage) Validate() error {
	if strings.TrimSpace(m.WebhookID) == "" {
		return fmt.Errorf("command: webhook id is required")
	}
	return nil
}

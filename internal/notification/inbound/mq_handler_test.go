package inbound

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shandysiswandi/hrnotify/internal/notification/usecase"
	"github.com/shandysiswandi/hrnotify/internal/pkg/goerror"
	"github.com/shandysiswandi/hrnotify/internal/pkg/instrument"
	"github.com/shandysiswandi/hrnotify/internal/pkg/messaging"
)

type stubMessage struct {
	body    string
	headers map[string]string
}

func (m stubMessage) Body() []byte               { return []byte(m.body) }
func (m stubMessage) Key() []byte                { return nil }
func (m stubMessage) Header(key string) string   { return m.headers[key] }
func (m stubMessage) Source() string             { return "notification_requested" }
func (m stubMessage) Timestamp() time.Time       { return time.Time{} }
func (m stubMessage) Ack(context.Context) error  { return nil }
func (m stubMessage) Nack(context.Context) error { return nil }

var _ messaging.Message = stubMessage{}

type fixedID string

func (f fixedID) Generate() string { return string(f) }

// correlationUC captures the correlation id seen by Submit.
type correlationUC struct {
	fakeUC
	cID string
}

func (c *correlationUC) Submit(ctx context.Context, in usecase.SubmitInput) (*usecase.SubmitOutput, error) {
	c.cID = instrument.GetCorrelationID(ctx)
	return c.fakeUC.Submit(ctx, in)
}

func TestMQHandler_NotificationRequested(t *testing.T) {
	valid := `{"recipient_id":42,"category":"security","priority":"urgent","title":"New login","body":"From Jakarta"}`

	tests := []struct {
		name       string
		body       string
		submitErr  error
		wantErr    bool
		wantSubmit int
	}{
		{name: "submitted", body: valid, wantSubmit: 1},
		{name: "malformed body is dropped", body: `{"recipient_id":`, wantSubmit: 0},
		{name: "validation error is dropped", body: valid, submitErr: goerror.NewInvalidInput(errors.New("bad")), wantSubmit: 1},
		{name: "no channel is dropped", body: valid, submitErr: goerror.NewBusiness("no channel", goerror.CodeInvalidInput), wantSubmit: 1},
		{name: "server error is redelivered", body: valid, submitErr: goerror.NewServer(errors.New("db down")), wantErr: true, wantSubmit: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			fake := &fakeUC{submitOut: &usecase.SubmitOutput{NotificationID: 5}, submitErr: tt.submitErr}
			h := &MQHandler{uc: fake, uuid: fixedID("generated"), ins: instrument.NewNoop()}

			// Act
			err := h.NotificationRequested(context.Background(), stubMessage{body: tt.body})

			// Assert
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if len(fake.submitIn) != tt.wantSubmit {
				t.Fatalf("submit calls = %d, want %d", len(fake.submitIn), tt.wantSubmit)
			}
			if tt.wantSubmit == 1 && (fake.submitIn[0].RecipientID != 42 || fake.submitIn[0].Priority != "urgent") {
				t.Fatalf("unexpected input: %+v", fake.submitIn[0])
			}
		})
	}
}

func TestMQHandler_CorrelationID(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{name: "from header", headers: map[string]string{keyOfCorrelationID: "cid-abc"}, want: "cid-abc"},
		{name: "generated", want: "generated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			cuc := &correlationUC{fakeUC: fakeUC{submitOut: &usecase.SubmitOutput{}}}
			h := &MQHandler{uc: cuc, uuid: fixedID("generated"), ins: instrument.NewNoop()}
			msg := stubMessage{body: `{"recipient_id":1,"category":"generic","title":"t","body":"b"}`, headers: tt.headers}

			// Act
			_ = h.NotificationRequested(context.Background(), msg)

			// Assert
			if cuc.cID != tt.want {
				t.Fatalf("correlation id = %q, want %q", cuc.cID, tt.want)
			}
		})
	}
}

package notify

import (
	"context"
	"errors"
	"testing"
)

func TestSendRejectsInvalidNumbers(t *testing.T) {
	sender := NewTwilioSender("AC123", "token", "+15550001111", nil)

	for _, to := range []string{"", "5551234", "07700900000", "+123", "+4479     00", "whatsapp:+15551234567"} {
		err := sender.Send(context.Background(), Message{To: to, Body: "hi"})
		if !errors.Is(err, ErrInvalidNumber) {
			t.Fatalf("to %q: expected ErrInvalidNumber, got %v", to, err)
		}
	}
}

func TestSendRequiresCredentials(t *testing.T) {
	sender := NewTwilioSender("", "", "+15550001111", nil)
	if err := sender.Send(context.Background(), Message{To: "+447700900123", Body: "hi"}); err == nil {
		t.Fatal("expected error without credentials")
	}
}

func TestSendRequiresBody(t *testing.T) {
	sender := NewTwilioSender("AC123", "token", "+15550001111", nil)
	if err := sender.Send(context.Background(), Message{To: "+447700900123", Body: "   "}); err == nil {
		t.Fatal("expected error for empty body")
	}
}

func TestFormatTwilioError(t *testing.T) {
	got := formatTwilioError(400, []byte(`{"code":21211,"message":"Invalid 'To' Phone Number"}`))
	want := "status 400 code 21211: Invalid 'To' Phone Number"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if got := formatTwilioError(500, nil); got != "status 500" {
		t.Fatalf("got %q", got)
	}
}

package amqp

import "testing"

func TestMessageRoundTrip(t *testing.T) {
	msg := NewSyncMessage("tx-42")
	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	decoded, err := MessageFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Op != OpSync || decoded.ID != "tx-42" {
		t.Errorf("decoded = %+v, want sync for tx-42", decoded)
	}
	if decoded.Timestamp.IsZero() {
		t.Error("timestamp not carried")
	}
}

func TestMessageFromJSONRejectsGarbage(t *testing.T) {
	if _, err := MessageFromJSON([]byte("{not json")); err == nil {
		t.Error("garbage body accepted")
	}
}

package whatsapp

import (
	"encoding/json"
	"testing"
)

const samplePayload = `{
  "object": "whatsapp_business_account",
  "entry": [{
    "id": "biz",
    "changes": [
      {"field": "messages", "value": {
        "messaging_product": "whatsapp",
        "messages": [
          {"from": "628111", "id": "m1", "type": "image", "image": {"id": "img-1", "mime_type": "image/jpeg"}},
          {"from": "628111", "id": "m2", "type": "text", "text": {"body": "hi"}},
          {"from": "628222", "id": "m3", "type": "document", "document": {"id": "doc-1", "mime_type": "application/pdf"}},
          {"from": "628222", "id": "m4", "type": "document", "document": {"id": "doc-2", "mime_type": "application/zip"}}
        ]
      }},
      {"field": "statuses", "value": {"messaging_product": "whatsapp"}}
    ]
  }]
}`

func TestWebhookPayload_ReceiptMedia(t *testing.T) {
	var p WebhookPayload
	if err := json.Unmarshal([]byte(samplePayload), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	msgs := p.Messages()
	if len(msgs) != 4 {
		t.Fatalf("messages = %d, want 4", len(msgs))
	}

	want := map[string]string{"m1": "img-1", "m2": "", "m3": "doc-1", "m4": ""}
	for _, m := range msgs {
		media := m.ReceiptMedia()
		got := ""
		if media != nil {
			got = media.ID
		}
		if got != want[m.ID] {
			t.Errorf("%s: media = %q, want %q", m.ID, got, want[m.ID])
		}
	}
}

package whatsapp

// WebhookPayload is the Cloud API webhook notification body.
type WebhookPayload struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

type WebhookEntry struct {
	ID      string          `json:"id"`
	Changes []WebhookChange `json:"changes"`
}

type WebhookChange struct {
	Field string       `json:"field"`
	Value WebhookValue `json:"value"`
}

type WebhookValue struct {
	MessagingProduct string            `json:"messaging_product"`
	Contacts         []WebhookContact  `json:"contacts,omitempty"`
	Messages         []CloudAPIMessage `json:"messages,omitempty"`
}

type WebhookContact struct {
	WaID    string `json:"wa_id"`
	Profile struct {
		Name string `json:"name"`
	} `json:"profile"`
}

// CloudAPIMessage represents incoming message from webhook
type CloudAPIMessage struct {
	From      string                `json:"from"`
	ID        string                `json:"id"`
	Timestamp string                `json:"timestamp"`
	Type      string                `json:"type"` // text, image, document, etc.
	Text      *CloudAPITextMessage  `json:"text,omitempty"`
	Image     *CloudAPIMediaMessage `json:"image,omitempty"`
	Document  *CloudAPIMediaMessage `json:"document,omitempty"`
}

type CloudAPITextMessage struct {
	Body string `json:"body"`
}

type CloudAPIMediaMessage struct {
	ID       string `json:"id"`
	MimeType string `json:"mime_type"`
	SHA256   string `json:"sha256"`
	Caption  string `json:"caption,omitempty"`
}

// Messages flattens every inbound message of a "messages" change.
func (p *WebhookPayload) Messages() []CloudAPIMessage {
	var out []CloudAPIMessage
	for _, e := range p.Entry {
		for _, c := range e.Changes {
			if c.Field != "messages" {
				continue
			}
			out = append(out, c.Value.Messages...)
		}
	}
	return out
}

// ReceiptMedia returns the attachment of an image message, or of a document
// that is an image or PDF. Other messages return nil.
func (m *CloudAPIMessage) ReceiptMedia() *CloudAPIMediaMessage {
	switch {
	case m.Type == "image" && m.Image != nil:
		return m.Image
	case m.Type == "document" && m.Document != nil:
		switch m.Document.MimeType {
		case "image/jpeg", "image/png", "image/webp", "application/pdf":
			return m.Document
		}
	}
	return nil
}

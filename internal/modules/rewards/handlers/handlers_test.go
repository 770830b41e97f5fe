package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/core/docstore"
	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/core/export"
	corejobs "github.com/MuhamadAgungGumelar/resto-engage-be/internal/core/jobs"
	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/core/receipt"
	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/core/upload"
	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/core/whatsapp"
	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/modules/rewards/repositories"
	rewardjobs "github.com/MuhamadAgungGumelar/resto-engage-be/internal/modules/rewards/jobs"
	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/modules/rewards/services"
)

const oceanBasketText = "OCEAN BASKET The Grove\nPRO-FORMA INVOICE: 09419754\n12/11/2025\nITEM QTY PRICE VALUE\nCalamari 1 92.00 92.00\nBill Total 524.00\n"

// ocrByRef returns text per image reference; unknown references fail.
type ocrByRef map[string]string

func (o ocrByRef) ExtractText(ctx context.Context, ref string) (string, error) {
	for suffix, text := range o {
		if strings.HasSuffix(ref, suffix) {
			return text, nil
		}
	}
	return "", errors.New("image not reachable")
}

type recordingQueue struct{ payloads []rewardjobs.ProcessPayload }

func (q *recordingQueue) Enqueue(ctx context.Context, owner, jobType string, payload interface{}, opts ...corejobs.EnqueueOptions) (*corejobs.Job, error) {
	q.payloads = append(q.payloads, payload.(rewardjobs.ProcessPayload))
	job := &corejobs.Job{Owner: owner, Type: jobType}
	job.BeforeCreate(nil)
	return job, nil
}

type testEnv struct {
	app   *fiber.App
	queue *recordingQueue
	jobs  *fakeJobs
	jwt   *auth.JWTService
}

func newTestEnv(t *testing.T, withAuth bool) *testEnv {
	t.Helper()

	store, err := docstore.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ocr := ocrByRef{"ocean.jpg": oceanBasketText, "blank.jpg": "hello world", ".png": oceanBasketText}
	receipts := services.NewReceiptService(ocr, receipt.NewParser(), repositories.NewReceiptRepo(store), "27", zerolog.Nop())

	local, err := upload.NewLocalProvider(t.TempDir(), "")
	if err != nil {
		t.Fatal(err)
	}
	uploads := upload.NewService(local, zerolog.Nop())

	var jwtService *auth.JWTService
	if withAuth {
		jwtService = auth.NewJWTService("test-secret", time.Hour)
	}

	queue := &recordingQueue{}
	jobs := newFakeJobs()
	wa := whatsapp.NewService(nil, zerolog.Nop())

	app := fiber.New()
	RegisterRoutes(app,
		NewReceiptHandler(receipts, uploads, export.NewService(), validator.New(), zerolog.Nop()),
		NewWebhookHandler("verify-me", queue, wa, zerolog.Nop()),
		NewHealthHandler("fake", wa.GetProviderName(), uploads.GetProviderName()),
		NewQRHandler("+27821234567"),
		NewJobsHandler(jobs),
		jwtService,
	)
	return &testEnv{app: app, queue: queue, jobs: jobs, jwt: jwtService}
}

func (e *testEnv) do(t *testing.T, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL, err)
	}
	body, _ := io.ReadAll(resp.Body)
	return resp, body
}

func jsonRequest(method, path string, body interface{}) *http.Request {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestProcessReceiptEndpoint(t *testing.T) {
	env := newTestEnv(t, false)

	tests := []struct {
		name string
		body interface{}
		want int
	}{
		{"accepted", ProcessReceiptRequest{ImageURL: "https://img/ocean.jpg", Phone: "0821234567"}, fiber.StatusCreated},
		{"missing phone", ProcessReceiptRequest{ImageURL: "https://img/ocean.jpg"}, fiber.StatusBadRequest},
		{"not a url", ProcessReceiptRequest{ImageURL: "ocean", Phone: "0821234567"}, fiber.StatusBadRequest},
		{"bad phone", ProcessReceiptRequest{ImageURL: "https://img/ocean.jpg", Phone: "call me maybe"}, fiber.StatusBadRequest},
		{"ocr failure", ProcessReceiptRequest{ImageURL: "https://img/missing.jpg", Phone: "0821234567"}, fiber.StatusUnprocessableEntity},
		{"not recognised", ProcessReceiptRequest{ImageURL: "https://img/blank.jpg", Phone: "0821234567"}, fiber.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := env.do(t, jsonRequest("POST", "/receipts/process", tt.body))
			if resp.StatusCode != tt.want {
				t.Fatalf("status = %d, want %d: %s", resp.StatusCode, tt.want, body)
			}
		})
	}

	resp, body := env.do(t, httptest.NewRequest("GET", "/receipts/09419754", nil))
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("GET receipt status = %d: %s", resp.StatusCode, body)
	}
	var got receipt.AcceptedReceipt
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatal(err)
	}
	if got.GuestPhoneNumber != "+27821234567" || got.TotalAmount != 524 {
		t.Errorf("got %+v", got)
	}

	resp, _ = env.do(t, httptest.NewRequest("GET", "/receipts/unknown", nil))
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("unknown receipt status = %d", resp.StatusCode)
	}
}

func TestNotRecognisedListsAttempts(t *testing.T) {
	env := newTestEnv(t, false)

	_, body := env.do(t, jsonRequest("POST", "/receipts/process",
		ProcessReceiptRequest{ImageURL: "https://img/blank.jpg", Phone: "0821234567"}))

	var out struct {
		Attempts []string `json:"attempts"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Attempts) != 3 || !strings.HasPrefix(out.Attempts[0], "standard") {
		t.Errorf("attempts = %v", out.Attempts)
	}
}

func TestGuestListingAndExport(t *testing.T) {
	env := newTestEnv(t, false)
	env.do(t, jsonRequest("POST", "/receipts/process", ProcessReceiptRequest{ImageURL: "https://img/ocean.jpg", Phone: "0821234567"}))

	resp, body := env.do(t, httptest.NewRequest("GET", "/guests/27821234567/receipts", nil))
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	var list struct {
		Count int     `json:"count"`
		Total float64 `json:"total"`
	}
	json.Unmarshal(body, &list)
	if list.Count != 1 || list.Total != 524 {
		t.Errorf("list = %+v", list)
	}

	resp, body = env.do(t, httptest.NewRequest("GET", "/guests/0821234567/receipts/export", nil))
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("export status = %d: %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("content type = %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "receipts-27821234567.xlsx") {
		t.Errorf("content disposition = %q", cd)
	}

	resp, body = env.do(t, httptest.NewRequest("GET", "/guests/0821234567/receipts/export?format=pdf", nil))
	if resp.StatusCode != fiber.StatusOK || !bytes.HasPrefix(body, []byte("%PDF-")) {
		t.Errorf("pdf export status = %d", resp.StatusCode)
	}

	resp, _ = env.do(t, httptest.NewRequest("GET", "/guests/0821234567/receipts/export?format=csv", nil))
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("csv export status = %d", resp.StatusCode)
	}

	resp, body = env.do(t, httptest.NewRequest("GET", "/guests/0821234567/summary", nil))
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("summary status = %d: %s", resp.StatusCode, body)
	}
	var summary struct {
		Phone        string  `json:"phone"`
		Period       string  `json:"period"`
		ReceiptCount int     `json:"receipt_count"`
		TotalSpend   float64 `json:"total_spend"`
	}
	json.Unmarshal(body, &summary)
	if summary.Phone != "27821234567" || summary.Period != "all" || summary.ReceiptCount != 1 || summary.TotalSpend != 524 {
		t.Errorf("summary = %+v", summary)
	}

	resp, _ = env.do(t, httptest.NewRequest("GET", "/guests/0821234567/summary?period=fortnight", nil))
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("unknown period status = %d", resp.StatusCode)
	}
}

func TestParseEndpoint(t *testing.T) {
	env := newTestEnv(t, false)

	resp, body := env.do(t, jsonRequest("POST", "/receipts/parse", ParseReceiptRequest{Text: oceanBasketText}))
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	var out struct {
		Receipt receipt.ParsedReceipt `json:"receipt"`
		Valid   bool                  `json:"valid"`
	}
	json.Unmarshal(body, &out)
	if !out.Valid || out.Receipt.Strategy != receipt.StrategyStandard {
		t.Errorf("out = %+v", out)
	}

	resp, body = env.do(t, jsonRequest("POST", "/receipts/parse", ParseReceiptRequest{Text: "hello world", Strategy: "generic"}))
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	var single struct {
		Valid    bool     `json:"valid"`
		Problems []string `json:"problems"`
	}
	json.Unmarshal(body, &single)
	if single.Valid || len(single.Problems) == 0 {
		t.Errorf("single strategy = %+v", single)
	}

	resp, _ = env.do(t, jsonRequest("POST", "/receipts/parse", ParseReceiptRequest{Text: "x", Strategy: "magic"}))
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("unknown strategy status = %d", resp.StatusCode)
	}
}

func TestUploadEndpoint(t *testing.T) {
	env := newTestEnv(t, false)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("phone", "0821234567")
	fw, _ := mw.CreateFormFile("file", "receipt.png")
	fw.Write([]byte("png-bytes"))
	mw.Close()

	req := httptest.NewRequest("POST", "/receipts/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, body := env.do(t, req)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	var got receipt.AcceptedReceipt
	json.Unmarshal(body, &got)
	if !strings.Contains(got.ImageURL, "receipts/27821234567/receipt_") {
		t.Errorf("ImageURL = %q", got.ImageURL)
	}
}

func TestWebhook(t *testing.T) {
	env := newTestEnv(t, false)

	resp, body := env.do(t, httptest.NewRequest("GET", "/webhook/whatsapp?hub.mode=subscribe&hub.verify_token=verify-me&hub.challenge=42", nil))
	if resp.StatusCode != fiber.StatusOK || string(body) != "42" {
		t.Errorf("verify = %d %q", resp.StatusCode, body)
	}
	resp, _ = env.do(t, httptest.NewRequest("GET", "/webhook/whatsapp?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=42", nil))
	if resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("bad token status = %d", resp.StatusCode)
	}

	payload := `{"object":"whatsapp_business_account","entry":[{"id":"1","changes":[{"field":"messages","value":{
		"messaging_product":"whatsapp",
		"messages":[
			{"from":"27821234567","id":"wamid.1","type":"image","image":{"id":"media-1","mime_type":"image/jpeg"}},
			{"from":"27821234567","id":"wamid.2","type":"text","text":{"body":"hi"}},
			{"from":"27821234567","id":"wamid.3","type":"document","document":{"id":"media-3","mime_type":"application/zip"}}
		]}}]}]}`
	req := httptest.NewRequest("POST", "/webhook/whatsapp", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, body = env.do(t, req)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	if len(env.queue.payloads) != 1 {
		t.Fatalf("queued %d jobs, want 1", len(env.queue.payloads))
	}
	if p := env.queue.payloads[0]; p.MediaID != "media-1" || p.From != "27821234567" {
		t.Errorf("payload = %+v", p)
	}
}

func TestStaffRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t, true)

	resp, _ := env.do(t, httptest.NewRequest("GET", "/receipts/09419754", nil))
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("without token status = %d", resp.StatusCode)
	}

	staff, _, _ := env.jwt.GenerateToken("staff-1", "", auth.RoleStaff)
	req := httptest.NewRequest("GET", "/guests/0821234567/receipts", nil)
	req.Header.Set("Authorization", "Bearer "+staff)
	resp, _ = env.do(t, req)
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("staff listing status = %d", resp.StatusCode)
	}

	req = httptest.NewRequest("GET", "/guests/0821234567/receipts/export", nil)
	req.Header.Set("Authorization", "Bearer "+staff)
	resp, _ = env.do(t, req)
	if resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("staff export status = %d, want 403", resp.StatusCode)
	}

	// guest intake stays open
	resp, _ = env.do(t, jsonRequest("POST", "/receipts/process", ProcessReceiptRequest{ImageURL: "https://img/ocean.jpg", Phone: "0821234567"}))
	if resp.StatusCode != fiber.StatusCreated {
		t.Errorf("process status = %d", resp.StatusCode)
	}
}

func TestTableCardQR(t *testing.T) {
	env := newTestEnv(t, false)

	resp, body := env.do(t, httptest.NewRequest(http.MethodGet, "/qr/table-card?size=128", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q", ct)
	}
	if !bytes.HasPrefix(body, []byte("\x89PNG")) {
		t.Error("expected PNG body")
	}

	resp, _ = env.do(t, httptest.NewRequest(http.MethodGet, "/qr/table-card?size=10", nil))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("small size status = %d, want 400", resp.StatusCode)
	}
}

package handler

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"securehire/internal/domain/entity"
	"securehire/internal/domain/service"
	ws "securehire/internal/infrastructure/websocket"
	"securehire/internal/usecase"
	apperrors "securehire/pkg/errors"
)

func TestListContactsLoadsFirstPage(t *testing.T) {
	f := newFixture(t)
	f.identities.page("", "s1", "s2")

	c, rec := f.request(http.MethodGet, "/v1/contacts", companyUID, entity.RoleCompany, "")
	require.NoError(t, f.contacts.ListContacts(c))
	assertStatus(t, rec, http.StatusOK)

	var body contactListResponse
	decode(t, rec, &body)
	require.Len(t, body.Contacts, 2)
	assert.Equal(t, "s1", body.Contacts[0].AuthID)
	assert.Equal(t, "Guard s1", body.Contacts[0].Name)
	assert.True(t, body.HasMore)
	assert.Equal(t, "s2", body.Cursor)

	// A second call answers from the session without fetching again.
	c, rec = f.request(http.MethodGet, "/v1/contacts", companyUID, entity.RoleCompany, "")
	require.NoError(t, f.contacts.ListContacts(c))
	assertStatus(t, rec, http.StatusOK)
	assert.Equal(t, 1, f.identities.listCalls())
}

func TestScrollFarFromBottomDoesNotFetch(t *testing.T) {
	f := newFixture(t)
	f.identities.page("", "s1")

	c, rec := f.request(http.MethodPost, "/v1/contacts/scroll", companyUID, entity.RoleCompany,
		`{"scroll_top":0,"scroll_height":2000,"client_height":100}`)
	require.NoError(t, f.contacts.Scroll(c))
	assertStatus(t, rec, http.StatusOK)

	var body map[string]interface{}
	decode(t, rec, &body)
	assert.Equal(t, false, body["fetched"])
	assert.Equal(t, 0, f.identities.listCalls())

	c, rec = f.request(http.MethodPost, "/v1/contacts/scroll", companyUID, entity.RoleCompany,
		`{"scroll_top":1850,"scroll_height":2000,"client_height":100}`)
	require.NoError(t, f.contacts.Scroll(c))
	assertStatus(t, rec, http.StatusOK)
	decode(t, rec, &body)
	assert.Equal(t, true, body["fetched"])
	assert.Equal(t, 1, f.identities.listCalls())
}

func TestScrollRejectsNegativePosition(t *testing.T) {
	f := newFixture(t)

	c, rec := f.request(http.MethodPost, "/v1/contacts/scroll", companyUID, entity.RoleCompany,
		`{"scroll_top":-1,"scroll_height":2000,"client_height":100}`)
	require.NoError(t, f.contacts.Scroll(c))
	assertStatus(t, rec, http.StatusBadRequest)
	assert.Equal(t, "VALIDATION_ERROR", decode(t, rec, nil).Error.Code)
}

func TestUpdateCompanyProfile(t *testing.T) {
	f := newFixture(t)

	c, rec := f.request(http.MethodPut, "/v1/profile", companyUID, entity.RoleCompany,
		`{"company_name":"Shield Co","registration_number":"REG-1","address":"1 Main St","contact_phone":"555-0100"}`)
	require.NoError(t, f.profile.UpdateProfile(c))
	assertStatus(t, rec, http.StatusOK)

	saved := f.backend.profiles[companyUID]
	require.NotNil(t, saved)
	assert.Equal(t, "Shield Co", saved.Company.CompanyName)

	toasts := f.pusher.frames(companyUID, ws.MessageTypeToast)
	require.Len(t, toasts, 1)
	var toast entity.Toast
	require.NoError(t, toasts[0].Decode(&toast))
	assert.Equal(t, entity.ToastSuccess, toast.Level)

	// Documents are still missing, so the gate stays closed.
	c, rec = f.request(http.MethodGet, "/v1/profile/status", companyUID, entity.RoleCompany, "")
	require.NoError(t, f.profile.GetCompletion(c))
	var status struct {
		Complete bool     `json:"complete"`
		Missing  []string `json:"missing_fields"`
	}
	decode(t, rec, &status)
	assert.False(t, status.Complete)
	assert.ElementsMatch(t, []string{"logo_url", "license_url"}, status.Missing)
}

func TestUpdateProfileValidation(t *testing.T) {
	f := newFixture(t)

	c, rec := f.request(http.MethodPut, "/v1/profile", companyUID, entity.RoleCompany, `{"address":"1 Main St"}`)
	require.NoError(t, f.profile.UpdateProfile(c))
	assertStatus(t, rec, http.StatusBadRequest)

	c, rec = f.request(http.MethodPut, "/v1/profile", seekerUID, entity.RoleJobSeeker,
		`{"full_name":"Sam Guard","date_of_birth":"01/05/1990"}`)
	require.NoError(t, f.profile.UpdateProfile(c))
	assertStatus(t, rec, http.StatusBadRequest)
	assert.Empty(t, f.backend.profiles)
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

func multipartRequest(t *testing.T, kind string, content []byte) (*http.Request, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("kind", kind))
	if content != nil {
		part, err := w.CreateFormFile("file", "logo.png")
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/profile/documents", &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req, w.FormDataContentType()
}

func TestUploadDocument(t *testing.T) {
	f := newFixture(t)
	f.completeCompany()

	req, _ := multipartRequest(t, "logo", pngBytes(t))
	rec := httptest.NewRecorder()
	c := f.e.NewContext(req, rec)
	c.Set("uid", companyUID)
	c.Set("role", entity.RoleCompany)

	require.NoError(t, f.profile.UploadDocument(c))
	assertStatus(t, rec, http.StatusCreated)

	var body map[string]string
	decode(t, rec, &body)
	assert.Equal(t, "https://files.example/be-co/logo", body["url"])
	require.Len(t, f.backend.uploads, 1)
	assert.Equal(t, "image/png", f.backend.uploads[0].ContentType)
}

func TestUploadDocumentRequiresFile(t *testing.T) {
	f := newFixture(t)
	f.completeCompany()

	req, _ := multipartRequest(t, "logo", nil)
	rec := httptest.NewRecorder()
	c := f.e.NewContext(req, rec)
	c.Set("uid", companyUID)
	c.Set("role", entity.RoleCompany)

	require.NoError(t, f.profile.UploadDocument(c))
	assertStatus(t, rec, http.StatusBadRequest)
	assert.Empty(t, f.backend.uploads)
}

func TestPostJob(t *testing.T) {
	f := newFixture(t)
	f.completeCompany()

	c, rec := f.request(http.MethodPost, "/v1/jobs", companyUID, entity.RoleCompany,
		`{"title":"Night watch","address":"1 Main St","pay_rate":25}`)
	require.NoError(t, f.job.PostJob(c))
	assertStatus(t, rec, http.StatusBadRequest)

	c, rec = f.request(http.MethodPost, "/v1/jobs", companyUID, entity.RoleCompany,
		`{"title":"Night watch","address":"1 Main St","latitude":-6.2,"longitude":106.8,"pay_rate":25}`)
	require.NoError(t, f.job.PostJob(c))
	assertStatus(t, rec, http.StatusCreated)

	var job entity.Job
	decode(t, rec, &job)
	assert.Equal(t, "be-co", job.CompanyID)
	assert.Equal(t, 1, job.Guards)
	assert.InDelta(t, -6.2, job.Latitude, 1e-9)
}

func TestCheckInQRCode(t *testing.T) {
	f := newFixture(t)
	f.completeCompany()
	f.backend.jobs["j1"] = &entity.Job{ID: "j1", CompanyID: "be-co"}
	f.backend.jobs["j2"] = &entity.Job{ID: "j2", CompanyID: "someone-else"}

	c, rec := f.request(http.MethodGet, "/v1/jobs/j1/checkin-qr?size=128", companyUID, entity.RoleCompany, "")
	c.SetParamNames("id")
	c.SetParamValues("j1")
	require.NoError(t, f.job.CheckInQRCode(c))
	assertStatus(t, rec, http.StatusOK)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	c, rec = f.request(http.MethodGet, "/v1/jobs/j2/checkin-qr", companyUID, entity.RoleCompany, "")
	c.SetParamNames("id")
	c.SetParamValues("j2")
	require.NoError(t, f.job.CheckInQRCode(c))
	assertStatus(t, rec, http.StatusForbidden)
}

func TestScanAlternatesCheckInAndOut(t *testing.T) {
	f := newFixture(t)
	f.completeSeeker()
	f.backend.jobs["j1"] = &entity.Job{ID: "j1", CompanyID: "be-co"}
	payload := service.CheckInPayload("j1", "abc123")

	for _, want := range []entity.LogbookKind{entity.LogbookCheckIn, entity.LogbookCheckOut} {
		c, rec := f.request(http.MethodPost, "/v1/checkins", seekerUID, entity.RoleJobSeeker,
			`{"payload":"`+payload+`","latitude":-6.2,"longitude":106.8}`)
		require.NoError(t, f.checkIn.Scan(c))
		assertStatus(t, rec, http.StatusCreated)

		var entry entity.LogbookEntry
		decode(t, rec, &entry)
		assert.Equal(t, want, entry.Kind)
		assert.Equal(t, "be-js", entry.JobSeekerID)
	}

	c, rec := f.request(http.MethodPost, "/v1/checkins", seekerUID, entity.RoleJobSeeker, `{"payload":"hello"}`)
	require.NoError(t, f.checkIn.Scan(c))
	assertStatus(t, rec, http.StatusBadRequest)
}

func TestSessionMe(t *testing.T) {
	f := newFixture(t)

	c, rec := f.request(http.MethodGet, "/v1/session", seekerUID, entity.RoleJobSeeker, "")
	require.NoError(t, f.session.Me(c))
	assertStatus(t, rec, http.StatusOK)

	var body map[string]string
	decode(t, rec, &body)
	assert.Equal(t, map[string]string{"uid": seekerUID, "role": "jobseeker"}, body)
}

type pingFunc func(ctx context.Context) error

func (p pingFunc) Ping(ctx context.Context) error { return p(ctx) }

func TestReadiness(t *testing.T) {
	e := echo.New()
	ok := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("connection refused") })

	h := NewHealthHandler(map[string]Pinger{"local_store": ok})
	rec := httptest.NewRecorder()
	require.NoError(t, h.CheckReadiness(e.NewContext(httptest.NewRequest(http.MethodGet, "/ready", nil), rec)))
	assert.Equal(t, http.StatusOK, rec.Code)

	h = NewHealthHandler(map[string]Pinger{"local_store": ok, "redis": down})
	rec = httptest.NewRecorder()
	require.NoError(t, h.CheckReadiness(e.NewContext(httptest.NewRequest(http.MethodGet, "/ready", nil), rec)))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}

func frame(t *testing.T, messageType string, data interface{}) ws.WSMessage {
	t.Helper()
	return ws.NewMessage(messageType, data)
}

func TestLiveSessionGatesContactSelection(t *testing.T) {
	f := newFixture(t)
	client := &ws.Client{UserID: companyUID, Role: string(entity.RoleCompany)}

	err := f.live.HandleFrame(context.Background(), client,
		frame(t, ws.MessageTypeSelectContact, ws.SelectContactData{ContactID: seekerUID}))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeProfileIncomplete))

	f.completeCompany()
	err = f.live.HandleFrame(context.Background(), client,
		frame(t, ws.MessageTypeSelectContact, ws.SelectContactData{ContactID: seekerUID}))
	require.NoError(t, err)
}

func TestLiveSessionSendMessage(t *testing.T) {
	f := newFixture(t)
	f.completeCompany()
	client := &ws.Client{UserID: companyUID, Role: string(entity.RoleCompany)}

	err := f.live.HandleFrame(context.Background(), client,
		frame(t, ws.MessageTypeSendMessage, ws.SendMessageData{ReceiverID: seekerUID, Text: "  Are you free tonight?  "}))
	require.NoError(t, err)

	require.Len(t, f.chats.messages, 1)
	assert.Equal(t, "Are you free tonight?", f.chats.messages[0].Text)

	// Not subscribed to the room, so the sender gets the stored message back directly.
	echoed := f.pusher.frames(companyUID, ws.MessageTypeMessage)
	require.Len(t, echoed, 1)
	var msg entity.Message
	require.NoError(t, echoed[0].Decode(&msg))
	assert.Equal(t, f.chats.messages[0].ID, msg.ID)

	assert.Len(t, f.pusher.frames(seekerUID, ws.MessageTypeToast), 1)
}

func TestLiveSessionScrollPushesContacts(t *testing.T) {
	f := newFixture(t)
	f.identities.page("", "s1", "s2")
	client := &ws.Client{UserID: companyUID, Role: string(entity.RoleCompany)}

	err := f.live.HandleFrame(context.Background(), client,
		frame(t, ws.MessageTypeScroll, ws.ScrollData{ScrollTop: 0, ScrollHeight: 100, ClientHeight: 100}))
	require.NoError(t, err)

	pushed := f.pusher.frames(companyUID, ws.MessageTypeContactsAppended)
	require.Len(t, pushed, 1)
	var res usecase.BatchResult
	require.NoError(t, pushed[0].Decode(&res))
	assert.Len(t, res.Appended, 2)
}

func TestLiveSessionRejectsUnknownFrames(t *testing.T) {
	f := newFixture(t)
	client := &ws.Client{UserID: companyUID, Role: string(entity.RoleCompany)}

	err := f.live.HandleFrame(context.Background(), client, frame(t, "dance", nil))
	assert.True(t, apperrors.Is(err, apperrors.CodeBadRequest))
}

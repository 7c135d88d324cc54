package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yigit/mobility/internal/app/models"
	"github.com/yigit/mobility/internal/app/models/dto"
	"github.com/yigit/mobility/internal/app/services"
	"github.com/yigit/mobility/internal/app/workflow"
	"github.com/yigit/mobility/internal/middleware"
	"github.com/yigit/mobility/internal/pkg/apperrors"
	"github.com/yigit/mobility/internal/pkg/filestorage"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := middleware.RegisterValidators(); err != nil {
		panic(err)
	}
}

// mockApplicationService records dossier calls
type mockApplicationService struct {
	mock.Mock
}

func (m *mockApplicationService) Create(ctx context.Context, actor workflow.Actor, req *dto.CreateApplicationRequest) (*dto.ApplicationResponse, error) {
	args := m.Called(actor, req)
	return resp(args)
}

func (m *mockApplicationService) Get(ctx context.Context, actor workflow.Actor, id uuid.UUID) (*dto.ApplicationDetailResponse, error) {
	args := m.Called(actor, id)
	detail, _ := args.Get(0).(*dto.ApplicationDetailResponse)
	return detail, args.Error(1)
}

func (m *mockApplicationService) List(ctx context.Context, actor workflow.Actor, filter *dto.ApplicationFilterRequest) (*dto.ApplicationListResponse, error) {
	args := m.Called(actor, filter)
	list, _ := args.Get(0).(*dto.ApplicationListResponse)
	return list, args.Error(1)
}

func (m *mockApplicationService) Submit(ctx context.Context, actor workflow.Actor, id uuid.UUID) (*dto.ApplicationResponse, error) {
	return resp(m.Called(actor, id))
}

func (m *mockApplicationService) ValidateMajor(ctx context.Context, actor workflow.Actor, id uuid.UUID) (*dto.ApplicationResponse, error) {
	return resp(m.Called(actor, id))
}

func (m *mockApplicationService) RequestRevision(ctx context.Context, actor workflow.Actor, id uuid.UUID, reason string) (*dto.ApplicationResponse, error) {
	return resp(m.Called(actor, id, reason))
}

func (m *mockApplicationService) ValidateFinal(ctx context.Context, actor workflow.Actor, id uuid.UUID) (*dto.ApplicationResponse, error) {
	return resp(m.Called(actor, id))
}

func (m *mockApplicationService) Reject(ctx context.Context, actor workflow.Actor, id uuid.UUID, reason string) (*dto.ApplicationResponse, error) {
	return resp(m.Called(actor, id, reason))
}

func resp(args mock.Arguments) (*dto.ApplicationResponse, error) {
	app, _ := args.Get(0).(*dto.ApplicationResponse)
	return app, args.Error(1)
}

// mockFileService records document calls
type mockFileService struct {
	mock.Mock
	uploaded []byte
}

func (m *mockFileService) List(ctx context.Context, actor workflow.Actor, applicationID uuid.UUID) ([]*dto.FileResponse, error) {
	args := m.Called(actor, applicationID)
	files, _ := args.Get(0).([]*dto.FileResponse)
	return files, args.Error(1)
}

func (m *mockFileService) Upload(ctx context.Context, actor workflow.Actor, applicationID uuid.UUID, upload services.Upload) (*dto.FileResponse, error) {
	m.uploaded, _ = io.ReadAll(upload.Content)
	args := m.Called(actor, applicationID, upload.FileName, upload.ContentType, upload.Size)
	f, _ := args.Get(0).(*dto.FileResponse)
	return f, args.Error(1)
}

func (m *mockFileService) Delete(ctx context.Context, actor workflow.Actor, applicationID, fileID uuid.UUID) error {
	return m.Called(actor, applicationID, fileID).Error(0)
}

func (m *mockFileService) DownloadURL(ctx context.Context, actor workflow.Actor, applicationID, fileID uuid.UUID) (*dto.FileURLResponse, error) {
	args := m.Called(actor, applicationID, fileID)
	u, _ := args.Get(0).(*dto.FileURLResponse)
	return u, args.Error(1)
}

// as authenticates every request of the test router as actor
func as(actor workflow.Actor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, actor.ID)
		c.Set(middleware.ContextRoleType, actor.Role)
		c.Next()
	}
}

func do(r *gin.Engine, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorCode {
	t.Helper()
	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	return body.Error.Code
}

func applicationRouter(svc services.ApplicationService, actor workflow.Actor) *gin.Engine {
	c := NewApplicationController(svc, zerolog.Nop())
	r := gin.New()
	g := r.Group("/applications", as(actor))
	g.POST("", c.Create)
	g.GET("/:id", c.Get)
	g.POST("/:id/submit", c.Submit)
	g.POST("/:id/request-revision", c.RequestRevision)
	g.POST("/:id/reject", c.Reject)
	return r
}

func TestApplicationController_Submit(t *testing.T) {
	student := workflow.Actor{ID: uuid.New(), Role: models.RoleStudent}
	appID := uuid.New()

	t.Run("success", func(t *testing.T) {
		svc := new(mockApplicationService)
		svc.On("Submit", student, appID).Return(&dto.ApplicationResponse{ID: appID, Status: models.StatusSubmitted}, nil)

		w := do(applicationRouter(svc, student), http.MethodPost, "/applications/"+appID.String()+"/submit", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"submitted"`)
		svc.AssertExpectations(t)
	})

	t.Run("invalid transition", func(t *testing.T) {
		svc := new(mockApplicationService)
		err := apperrors.NewCustomError(apperrors.ErrInvalidTransition, `cannot submit an application in status "validated_final"`).WithCode("submit")
		svc.On("Submit", student, appID).Return(nil, err)

		w := do(applicationRouter(svc, student), http.MethodPost, "/applications/"+appID.String()+"/submit", nil, "")
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, dto.ErrorCodeInvalidTransition, errorCode(t, w))
	})

	t.Run("bad id", func(t *testing.T) {
		svc := new(mockApplicationService)
		w := do(applicationRouter(svc, student), http.MethodPost, "/applications/not-a-uuid/submit", nil, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
	})
}

func TestApplicationController_ReasonRequired(t *testing.T) {
	head := workflow.Actor{ID: uuid.New(), Role: models.RoleMajorHead}
	appID := uuid.New()

	for _, action := range []string{"request-revision", "reject"} {
		t.Run(action, func(t *testing.T) {
			svc := new(mockApplicationService)
			r := applicationRouter(svc, head)

			w := do(r, http.MethodPost, "/applications/"+appID.String()+"/"+action, strings.NewReader(`{"reason":"   "}`), "application/json")
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, dto.ErrorCodeValidationFailed, errorCode(t, w))

			w = do(r, http.MethodPost, "/applications/"+appID.String()+"/"+action, strings.NewReader(`{}`), "application/json")
			assert.Equal(t, http.StatusBadRequest, w.Code)

			svc.AssertNotCalled(t, "RequestRevision", mock.Anything, mock.Anything, mock.Anything)
			svc.AssertNotCalled(t, "Reject", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestApplicationController_RequestRevisionPassesReason(t *testing.T) {
	head := workflow.Actor{ID: uuid.New(), Role: models.RoleMajorHead}
	appID := uuid.New()
	svc := new(mockApplicationService)
	svc.On("RequestRevision", head, appID, "missing grades").
		Return(&dto.ApplicationResponse{ID: appID, Status: models.StatusRevision}, nil)

	w := do(applicationRouter(svc, head), http.MethodPost, "/applications/"+appID.String()+"/request-revision",
		strings.NewReader(`{"reason":"missing grades"}`), "application/json")
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestApplicationController_CreateDuplicate(t *testing.T) {
	student := workflow.Actor{ID: uuid.New(), Role: models.RoleStudent}
	svc := new(mockApplicationService)
	svc.On("Create", student, mock.AnythingOfType("*dto.CreateApplicationRequest")).Return(nil, apperrors.ErrDuplicateApplication)

	body := `{"universityName":"TU Delft","universityCity":"Delft","universityCountry":"Netherlands","majorHeadId":"` + uuid.NewString() + `"}`
	w := do(applicationRouter(svc, student), http.MethodPost, "/applications", strings.NewReader(body), "application/json")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, dto.ErrorCodeDuplicateDossier, errorCode(t, w))
}

func TestActorOrAbortWithoutAuth(t *testing.T) {
	c := NewApplicationController(new(mockApplicationService), zerolog.Nop())
	r := gin.New()
	r.GET("/applications/:id", c.Get)

	w := do(r, http.MethodGet, "/applications/"+uuid.NewString(), nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func multipartPDF(t *testing.T, name string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+name+`"`)
	h.Set("Content-Type", "application/pdf")
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestFileController_Upload(t *testing.T) {
	student := workflow.Actor{ID: uuid.New(), Role: models.RoleStudent}
	appID := uuid.New()
	content := []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n")

	svc := new(mockFileService)
	svc.On("Upload", student, appID, "contrat.pdf", "application/pdf", int64(len(content))).
		Return(&dto.FileResponse{FileName: "contrat.pdf"}, nil)

	c := NewFileController(svc, zerolog.Nop())
	r := gin.New()
	r.POST("/applications/:id/files", as(student), c.Upload)

	body, ct := multipartPDF(t, "contrat.pdf", content)
	w := do(r, http.MethodPost, "/applications/"+appID.String()+"/files", body, ct)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, content, svc.uploaded)
	svc.AssertExpectations(t)
}

func TestFileController_UploadErrors(t *testing.T) {
	student := workflow.Actor{ID: uuid.New(), Role: models.RoleStudent}
	appID := uuid.New()

	svc := new(mockFileService)
	svc.On("Upload", student, appID, "big.pdf", "application/pdf", mock.Anything).Return(nil, apperrors.ErrFileTooLarge)

	c := NewFileController(svc, zerolog.Nop())
	r := gin.New()
	r.POST("/applications/:id/files", as(student), c.Upload)

	t.Run("missing file field", func(t *testing.T) {
		w := do(r, http.MethodPost, "/applications/"+appID.String()+"/files", strings.NewReader(""), "multipart/form-data; boundary=x")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("too large", func(t *testing.T) {
		body, ct := multipartPDF(t, "big.pdf", []byte("%PDF-1.4"))
		w := do(r, http.MethodPost, "/applications/"+appID.String()+"/files", body, ct)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Equal(t, dto.ErrorCodeFileTooLarge, errorCode(t, w))
	})
}

func TestBlobController_Download(t *testing.T) {
	ls, err := filestorage.NewLocalStorage(t.TempDir(), "http://localhost:8080/api/v1/blobs", "secret", zerolog.Nop())
	require.NoError(t, err)
	key := uuid.NewString() + "/1700000000000_contrat.pdf"
	content := "%PDF-1.4 body"
	require.NoError(t, ls.Put(context.Background(), key, strings.NewReader(content), int64(len(content)), "application/pdf"))

	c := NewBlobController(ls, zerolog.Nop())
	r := gin.New()
	r.GET("/api/v1/blobs/*key", c.Download)

	signed, err := ls.SignedURL(context.Background(), key, time.Minute)
	require.NoError(t, err)
	u, err := url.Parse(signed)
	require.NoError(t, err)

	t.Run("valid link", func(t *testing.T) {
		w := do(r, http.MethodGet, u.RequestURI(), nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Equal(t, content, w.Body.String())
	})

	t.Run("tampered signature", func(t *testing.T) {
		q := u.Query()
		q.Set("signature", "zz"+q.Get("signature")[2:])
		w := do(r, http.MethodGet, u.Path+"?"+q.Encode(), nil, "")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("missing signature", func(t *testing.T) {
		w := do(r, http.MethodGet, u.Path, nil, "")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	appID := uuid.New()
	for _, name := range []string{"cours#1.pdf", "a?b.pdf", "100%.pdf"} {
		t.Run("file name "+name, func(t *testing.T) {
			key := filestorage.GenerateKey(appID, name, time.Now())
			require.NoError(t, ls.Put(context.Background(), key, strings.NewReader(content), int64(len(content)), "application/pdf"))

			signed, err := ls.SignedURL(context.Background(), key, time.Minute)
			require.NoError(t, err)
			u, err := url.Parse(signed)
			require.NoError(t, err)

			w := do(r, http.MethodGet, u.RequestURI(), nil, "")
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, content, w.Body.String())
		})
	}
}

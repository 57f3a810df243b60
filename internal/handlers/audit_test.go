package handlers

import (
	"net/http/httptest"
	"strings"

	"sinkrona/internal/middleware"
	"sinkrona/internal/models"
	"sinkrona/internal/services"

	"github.com/gin-gonic/gin"
)

// auditCall 一次审计调用的关键字段
type auditCall struct {
	aksi        string
	tabel       string
	idReferensi *uint
	dataLama    interface{}
	dataBaru    interface{}
	userID      uint
}

// stubAuditRecorder 记录处理器发起的全部审计调用
type stubAuditRecorder struct {
	calls []auditCall
}

func (r *stubAuditRecorder) Log(params services.AuditParams) {
	r.calls = append(r.calls, auditCall{
		aksi:        params.Aksi,
		tabel:       params.Tabel,
		idReferensi: params.IDReferensi,
		dataLama:    params.DataLama,
		dataBaru:    params.DataBaru,
		userID:      params.UserID,
	})
}

func (r *stubAuditRecorder) LogCreate(tabel string, idReferensi uint, dataBaru interface{}, keterangan string, userID uint, meta *services.RequestMeta) {
	r.Log(services.AuditParams{Aksi: models.AksiCreate, Tabel: tabel, IDReferensi: &idReferensi, DataBaru: dataBaru, Keterangan: keterangan, UserID: userID, Meta: meta})
}

func (r *stubAuditRecorder) LogUpdate(tabel string, idReferensi uint, dataLama, dataBaru interface{}, keterangan string, userID uint, meta *services.RequestMeta) {
	r.Log(services.AuditParams{Aksi: models.AksiUpdate, Tabel: tabel, IDReferensi: &idReferensi, DataLama: dataLama, DataBaru: dataBaru, Keterangan: keterangan, UserID: userID, Meta: meta})
}

func (r *stubAuditRecorder) LogDelete(tabel string, idReferensi uint, dataLama interface{}, keterangan string, userID uint, meta *services.RequestMeta) {
	r.Log(services.AuditParams{Aksi: models.AksiDelete, Tabel: tabel, IDReferensi: &idReferensi, DataLama: dataLama, Keterangan: keterangan, UserID: userID, Meta: meta})
}

func (r *stubAuditRecorder) LogLogin(userID uint, keterangan string, meta *services.RequestMeta) {
	r.Log(services.AuditParams{Aksi: models.AksiLogin, Tabel: "users", IDReferensi: &userID, Keterangan: keterangan, UserID: userID, Meta: meta})
}

func (r *stubAuditRecorder) LogLogout(userID uint, keterangan string, meta *services.RequestMeta) {
	r.Log(services.AuditParams{Aksi: models.AksiLogout, Tabel: "users", IDReferensi: &userID, Keterangan: keterangan, UserID: userID, Meta: meta})
}

// newAuditTestContext 构造一个已登录actor的测试上下文
func newAuditTestContext(method, path, body string, actorID uint) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	RegisterValidators()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Request = httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		c.Request.Header.Set("Content-Type", "application/json")
	}

	c.Set(middleware.CtxUserID, actorID)
	c.Set(middleware.CtxUsername, "admin")
	return c, w
}

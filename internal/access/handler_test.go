package access

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/rfsolutions/access-management/internal/auth"
	"github.com/rfsolutions/access-management/internal/core/events"
	"github.com/rfsolutions/access-management/internal/sensor"
	"github.com/rfsolutions/access-management/internal/user"
)

var _ = ginkgo.Describe("AccessHandler", func() {
	var (
		handler  *Handler
		repo     *mockEventRepo
		holderID int64 = 10
	)

	ginkgo.BeforeEach(func() {
		dept := int64(1)
		sensors := &mockSensorLookup{sensors: map[string]*sensor.Sensor{
			"RFID-0001": {
				ID:           1,
				Code:         "RFID-0001",
				Type:         "Llavero",
				Status:       sensor.StatusActive,
				DepartmentID: &dept,
				HolderID:     &holderID,
			},
		}}
		users := &mockUserLookup{users: map[int64]*user.User{
			holderID: {ID: holderID, Status: auth.UserStatusActive, Role: auth.RoleOperator},
		}}
		repo = &mockEventRepo{}
		lg := slog.New(slog.NewTextHandler(io.Discard, nil))
		service := NewService(repo, sensors, users, events.NewEventBus(lg), lg)
		handler = NewHandler(service)
	})

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/access/events", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		handler.Decide(rec, req)
		return rec
	}

	ginkgo.Describe("POST /access/events", func() {
		ginkgo.It("returns the decision for a permitted attempt", func() {
			rec := post(`{"sensor_code": "RFID-0001"}`)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusCreated))

			var decision Decision
			gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &decision)).To(gomega.Succeed())
			gomega.Expect(decision.Outcome).To(gomega.Equal(OutcomePermitted))
			gomega.Expect(decision.EventType).To(gomega.Equal(EventTypeValidAccess))
			gomega.Expect(decision.EventID).To(gomega.BeNumerically(">", 0))
		})

		ginkgo.It("returns 404 for an unknown sensor", func() {
			rec := post(`{"sensor_code": "RFID-MISSING"}`)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusNotFound))
			gomega.Expect(repo.events).To(gomega.BeEmpty())
		})

		ginkgo.It("returns 400 for an empty sensor code", func() {
			rec := post(`{"sensor_code": ""}`)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})

		ginkgo.It("returns 400 for a malformed body", func() {
			rec := post(`{not json`)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})
	})

	ginkgo.Describe("GET /iot/data", func() {
		ginkgo.It("returns a telemetry reading", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/iot/data", nil)
			rec := httptest.NewRecorder()

			handler.Telemetry(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))

			var reading TelemetryReading
			gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &reading)).To(gomega.Succeed())
			gomega.Expect(reading.ReadAt).To(gomega.BeTemporally("~", time.Now(), time.Minute))
		})
	})
})

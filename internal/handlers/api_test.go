package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/TigerK9/CSCI-432-Final/internal/database"
	"github.com/TigerK9/CSCI-432-Final/internal/handlers"
	"github.com/TigerK9/CSCI-432-Final/internal/middleware"
	"github.com/TigerK9/CSCI-432-Final/internal/models"
	"github.com/TigerK9/CSCI-432-Final/internal/motion"
	"github.com/TigerK9/CSCI-432-Final/internal/routes"
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testAPI struct {
	app   *fiber.App
	clock *manualClock
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	database.DB = db
	require.NoError(t, database.Migrate())

	clock := &manualClock{now: time.Date(2025, 10, 6, 19, 0, 0, 0, time.UTC)}
	handlers.Motions = motion.NewEngine(database.NewMotionStore(db), clock, 45*time.Second)

	app := fiber.New()
	routes.Setup(app)
	return &testAPI{app: app, clock: clock}
}

// newUser creates an account directly and returns its bearer token.
func (a *testAPI) newUser(t *testing.T, name, role string) (models.User, string) {
	t.Helper()
	user := models.User{
		Name:     name,
		Email:    fmt.Sprintf("%s@example.com", uuid.NewString()),
		Password: "ignored",
		Role:     role,
	}
	require.NoError(t, database.DB.Create(&user).Error)
	token, err := middleware.GenerateToken(user.ID, user.Email, user.Role, user.Name)
	require.NoError(t, err)
	return user, token
}

func (a *testAPI) do(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]interface{}
	if len(raw) > 0 {
		// Some endpoints return arrays; callers that need those decode
		// the raw body themselves.
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp.StatusCode, decoded
}

// createMeeting makes a meeting chaired by token's user and returns its
// id and join code.
func (a *testAPI) createMeeting(t *testing.T, token string) (string, string) {
	t.Helper()
	status, body := a.do(t, http.MethodPost, "/api/meetings/", token, fiber.Map{
		"name":     "October Session",
		"datetime": "2025-10-06T19:00",
	})
	require.Equal(t, http.StatusCreated, status)
	return body["meetingId"].(string), body["joinCode"].(string)
}

func TestSignupAndLogin(t *testing.T) {
	api := newTestAPI(t)

	status, _ := api.do(t, http.MethodPost, "/api/users/signup", "", fiber.Map{
		"name": "Member A", "email": "a@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, status)

	// Duplicate email rejected.
	status, _ = api.do(t, http.MethodPost, "/api/users/signup", "", fiber.Map{
		"name": "Member A", "email": "a@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusConflict, status)

	status, body := api.do(t, http.MethodPost, "/api/users/login", "", fiber.Map{
		"email": "a@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, body["token"])
	require.Equal(t, "member", body["role"])

	status, _ = api.do(t, http.MethodPost, "/api/users/login", "", fiber.Map{
		"email": "a@example.com", "password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, status)

	// Protected routes require the token.
	status, _ = api.do(t, http.MethodGet, "/api/profile", "", nil)
	require.Equal(t, http.StatusUnauthorized, status)
	status, profile := api.do(t, http.MethodGet, "/api/profile", body["token"].(string), nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Member A", profile["name"])
}

func TestMeetingCreateAndJoin(t *testing.T) {
	api := newTestAPI(t)
	_, chairToken := api.newUser(t, "Chair", "member")
	_, memberToken := api.newUser(t, "Member A", "member")

	meetingID, joinCode := api.createMeeting(t, chairToken)
	require.Len(t, joinCode, 6)

	// A non-participant cannot read the meeting.
	status, _ := api.do(t, http.MethodGet, "/api/meetings/"+meetingID, memberToken, nil)
	require.Equal(t, http.StatusForbidden, status)

	status, _ = api.do(t, http.MethodPost, "/api/meetings/join", memberToken, fiber.Map{
		"joinCode": joinCode,
	})
	require.Equal(t, http.StatusOK, status)

	// Joining twice is rejected.
	status, _ = api.do(t, http.MethodPost, "/api/meetings/join", memberToken, fiber.Map{
		"joinCode": joinCode,
	})
	require.Equal(t, http.StatusBadRequest, status)

	status, body := api.do(t, http.MethodGet, "/api/meetings/"+meetingID, memberToken, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "October Session", body["name"])
	require.Len(t, body["participants"], 2)
	require.Len(t, body["agenda"], 2, "default agenda is seeded")
}

func TestMotionLifecycleOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	_, chairToken := api.newUser(t, "Chair", "member")
	_, aToken := api.newUser(t, "Member A", "member")
	_, bToken := api.newUser(t, "Member B", "member")

	meetingID, joinCode := api.createMeeting(t, chairToken)
	for _, token := range []string{aToken, bToken} {
		status, _ := api.do(t, http.MethodPost, "/api/meetings/join", token, fiber.Map{"joinCode": joinCode})
		require.Equal(t, http.StatusOK, status)
	}

	base := "/api/meetings/" + meetingID

	// Member A proposes; motion starts pending.
	status, body := api.do(t, http.MethodPost, base+"/propose-motion", aToken, fiber.Map{
		"name": "Budget", "description": "Approve Q3 budget",
	})
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, "pending", body["status"])
	require.Equal(t, "Member A", body["creator"])

	// Missing description is a validation error.
	status, _ = api.do(t, http.MethodPost, base+"/propose-motion", aToken, fiber.Map{"name": "Bare"})
	require.Equal(t, http.StatusBadRequest, status)

	// A plain member cannot review.
	status, _ = api.do(t, http.MethodPost, base+"/motions/0/review", aToken, fiber.Map{"action": "approve"})
	require.Equal(t, http.StatusForbidden, status)

	// The chairman approves; the motion moves to the end as proposed.
	status, body = api.do(t, http.MethodPost, base+"/motions/0/review", chairToken, fiber.Map{"action": "approve"})
	require.Equal(t, http.StatusOK, status)
	meeting := body["meeting"].(map[string]interface{})
	queue := meeting["motionQueue"].([]interface{})
	require.Len(t, queue, 1)
	require.Equal(t, "proposed", queue[0].(map[string]interface{})["status"])

	// Reviewing again loses: the motion is no longer pending.
	status, _ = api.do(t, http.MethodPost, base+"/motions/0/review", chairToken, fiber.Map{"action": "deny"})
	require.Equal(t, http.StatusBadRequest, status)

	// Start the vote.
	status, body = api.do(t, http.MethodPost, base+"/start-vote/0", chairToken, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "voting", body["status"])
	require.NotNil(t, body["votingEndsAt"])

	// Aye from A, no from B.
	status, body = api.do(t, http.MethodPost, base+"/vote/0", aToken, fiber.Map{"vote": "aye"})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, body["hasVoted"])

	status, _ = api.do(t, http.MethodPost, base+"/vote/0", bToken, fiber.Map{"vote": "no"})
	require.Equal(t, http.StatusOK, status)

	// A votes again and is rejected.
	status, body = api.do(t, http.MethodPost, base+"/vote/0", aToken, fiber.Map{"vote": "no"})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "You have already voted on this motion", body["error"])

	// Complete: one aye, one no — tied.
	status, body = api.do(t, http.MethodPost, base+"/complete-voting/0", chairToken, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "tied", body["result"])
	votes := body["votes"].(map[string]interface{})
	require.Equal(t, float64(1), votes["aye"])
	require.Equal(t, float64(1), votes["no"])

	// Completing twice is rejected without re-tallying.
	status, _ = api.do(t, http.MethodPost, base+"/complete-voting/0", chairToken, nil)
	require.Equal(t, http.StatusBadRequest, status)
}

func TestLateVoteResolvesExpiredWindow(t *testing.T) {
	api := newTestAPI(t)
	_, chairToken := api.newUser(t, "Chair", "member")
	_, aToken := api.newUser(t, "Member A", "member")

	meetingID, joinCode := api.createMeeting(t, chairToken)
	status, _ := api.do(t, http.MethodPost, "/api/meetings/join", aToken, fiber.Map{"joinCode": joinCode})
	require.Equal(t, http.StatusOK, status)

	base := "/api/meetings/" + meetingID
	status, _ = api.do(t, http.MethodPost, base+"/propose-motion", aToken, fiber.Map{
		"name": "Adjourn", "description": "Adjourn the meeting",
	})
	require.Equal(t, http.StatusCreated, status)
	status, _ = api.do(t, http.MethodPost, base+"/motions/0/review", chairToken, fiber.Map{"action": "approve"})
	require.Equal(t, http.StatusOK, status)
	status, _ = api.do(t, http.MethodPost, base+"/start-vote/0", chairToken, nil)
	require.Equal(t, http.StatusOK, status)

	api.clock.Advance(46 * time.Second)

	// The late vote is rejected and carries the settled outcome.
	status, body := api.do(t, http.MethodPost, base+"/vote/0", aToken, fiber.Map{"vote": "aye"})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "Voting period has ended", body["message"])
	require.Equal(t, "no-votes", body["result"])

	// Polling readers observe the terminal state.
	status, body = api.do(t, http.MethodGet, base, aToken, nil)
	require.Equal(t, http.StatusOK, status)
	queue := body["motionQueue"].([]interface{})
	require.Equal(t, "no-votes", queue[0].(map[string]interface{})["status"])
}

func TestMinutesIncludeDeniedMotions(t *testing.T) {
	api := newTestAPI(t)
	_, chairToken := api.newUser(t, "Chair", "member")
	_, aToken := api.newUser(t, "Member A", "member")

	meetingID, joinCode := api.createMeeting(t, chairToken)
	status, _ := api.do(t, http.MethodPost, "/api/meetings/join", aToken, fiber.Map{"joinCode": joinCode})
	require.Equal(t, http.StatusOK, status)

	base := "/api/meetings/" + meetingID
	status, _ = api.do(t, http.MethodPost, base+"/propose-motion", aToken, fiber.Map{
		"name": "Unpopular", "description": "Deny me",
	})
	require.Equal(t, http.StatusCreated, status)
	status, _ = api.do(t, http.MethodPost, base+"/propose-motion", aToken, fiber.Map{
		"name": "Unreviewed", "description": "Still waiting",
	})
	require.Equal(t, http.StatusCreated, status)

	status, _ = api.do(t, http.MethodPost, base+"/motions/0/review", chairToken, fiber.Map{"action": "deny"})
	require.Equal(t, http.StatusOK, status)

	status, body := api.do(t, http.MethodGet, base+"/minutes", aToken, nil)
	require.Equal(t, http.StatusOK, status)
	entries := body["motions"].([]interface{})
	require.Len(t, entries, 1, "only reviewed motions appear in the minutes")
	entry := entries[0].(map[string]interface{})
	require.Equal(t, "Unpopular", entry["name"])
	require.Equal(t, "denied", entry["status"])
	require.Equal(t, "denied", entry["result"])
	require.Equal(t, "Chair", entry["reviewedBy"])
}

func TestEndedMeetingRejectsMotions(t *testing.T) {
	api := newTestAPI(t)
	_, chairToken := api.newUser(t, "Chair", "member")
	_, aToken := api.newUser(t, "Member A", "member")

	meetingID, joinCode := api.createMeeting(t, chairToken)
	status, _ := api.do(t, http.MethodPost, "/api/meetings/join", aToken, fiber.Map{"joinCode": joinCode})
	require.Equal(t, http.StatusOK, status)

	base := "/api/meetings/" + meetingID

	// Only the chairman can end the meeting.
	status, _ = api.do(t, http.MethodPost, base+"/end", aToken, nil)
	require.Equal(t, http.StatusForbidden, status)

	status, body := api.do(t, http.MethodPost, base+"/end", chairToken, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, body["ended"])

	status, _ = api.do(t, http.MethodPost, base+"/propose-motion", aToken, fiber.Map{
		"name": "Late", "description": "Too late",
	})
	require.Equal(t, http.StatusBadRequest, status)

	// The record stays readable.
	status, _ = api.do(t, http.MethodGet, base, aToken, nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = api.do(t, http.MethodGet, base+"/minutes", aToken, nil)
	require.Equal(t, http.StatusOK, status)
}

func TestAdminSeesAllMeetings(t *testing.T) {
	api := newTestAPI(t)
	_, chairToken := api.newUser(t, "Chair", "member")
	_, adminToken := api.newUser(t, "Admin", "admin")
	_, outsiderToken := api.newUser(t, "Outsider", "member")

	api.createMeeting(t, chairToken)

	var listMeetings = func(token string) int {
		req, err := http.NewRequest(http.MethodGet, "/api/meetings/", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := api.app.Test(req, -1)
		require.NoError(t, err)
		defer resp.Body.Close()
		var meetings []map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&meetings))
		return len(meetings)
	}

	require.Equal(t, 1, listMeetings(adminToken))
	require.Equal(t, 1, listMeetings(chairToken))
	require.Equal(t, 0, listMeetings(outsiderToken))
}

func TestMeetingUpdatesPreserveOpenVote(t *testing.T) {
	api := newTestAPI(t)
	chair, chairToken := api.newUser(t, "Chair", "member")
	memberA, aToken := api.newUser(t, "Member A", "member")
	memberB, bToken := api.newUser(t, "Member B", "member")

	meetingID, joinCode := api.createMeeting(t, chairToken)
	status, _ := api.do(t, http.MethodPost, "/api/meetings/join", aToken, fiber.Map{"joinCode": joinCode})
	require.Equal(t, http.StatusOK, status)

	base := "/api/meetings/" + meetingID
	status, _ = api.do(t, http.MethodPost, base+"/propose-motion", aToken, fiber.Map{
		"name": "Budget", "description": "Approve Q3 budget",
	})
	require.Equal(t, http.StatusCreated, status)
	status, _ = api.do(t, http.MethodPost, base+"/motions/0/review", chairToken, fiber.Map{"action": "approve"})
	require.Equal(t, http.StatusOK, status)
	status, _ = api.do(t, http.MethodPost, base+"/start-vote/0", chairToken, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = api.do(t, http.MethodPost, base+"/vote/0", aToken, fiber.Map{"vote": "aye"})
	require.Equal(t, http.StatusOK, status)

	// Meeting plumbing writes land while the vote is open.
	status, _ = api.do(t, http.MethodPut, base+"/participants", chairToken, fiber.Map{
		"participants": []string{chair.ID.String(), memberA.ID.String(), memberB.ID.String()},
	})
	require.Equal(t, http.StatusOK, status)
	status, _ = api.do(t, http.MethodPut, base, chairToken, fiber.Map{
		"name": "October Session (amended)",
	})
	require.Equal(t, http.StatusOK, status)

	// The recorded ballot survives both writes.
	status, body := api.do(t, http.MethodGet, base, aToken, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "October Session (amended)", body["name"])
	queue := body["motionQueue"].([]interface{})
	open := queue[0].(map[string]interface{})
	require.Equal(t, "voting", open["status"])
	require.Equal(t, float64(1), open["votes"].(map[string]interface{})["aye"])

	// The member added mid-vote can still cast a counted ballot.
	status, body = api.do(t, http.MethodPost, base+"/vote/0", bToken, fiber.Map{"vote": "aye"})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, float64(2), body["votes"].(map[string]interface{})["aye"])

	status, body = api.do(t, http.MethodPost, base+"/complete-voting/0", chairToken, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "approved", body["result"])
}

func TestExpirySyncRequiresMeetingAccess(t *testing.T) {
	api := newTestAPI(t)
	_, chairToken := api.newUser(t, "Chair", "member")
	_, aToken := api.newUser(t, "Member A", "member")
	_, outsiderToken := api.newUser(t, "Outsider", "member")

	meetingID, joinCode := api.createMeeting(t, chairToken)
	status, _ := api.do(t, http.MethodPost, "/api/meetings/join", aToken, fiber.Map{"joinCode": joinCode})
	require.Equal(t, http.StatusOK, status)

	base := "/api/meetings/" + meetingID
	status, _ = api.do(t, http.MethodPost, base+"/propose-motion", aToken, fiber.Map{
		"name": "Adjourn", "description": "Adjourn the meeting",
	})
	require.Equal(t, http.StatusCreated, status)
	status, _ = api.do(t, http.MethodPost, base+"/motions/0/review", chairToken, fiber.Map{"action": "approve"})
	require.Equal(t, http.StatusOK, status)
	status, _ = api.do(t, http.MethodPost, base+"/start-vote/0", chairToken, nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = api.do(t, http.MethodPost, base+"/vote/0", aToken, fiber.Map{"vote": "aye"})
	require.Equal(t, http.StatusOK, status)

	api.clock.Advance(46 * time.Second)

	// A non-participant read is refused before any expiry settlement,
	// on the meeting itself and on the minutes.
	status, _ = api.do(t, http.MethodGet, base, outsiderToken, nil)
	require.Equal(t, http.StatusForbidden, status)
	status, _ = api.do(t, http.MethodGet, base+"/minutes", outsiderToken, nil)
	require.Equal(t, http.StatusForbidden, status)

	var stored models.Meeting
	require.NoError(t, database.DB.First(&stored, "id = ?", meetingID).Error)
	require.Equal(t, motion.StatusVoting, stored.MotionQueue[0].Status,
		"refused read must not write the queue")

	// A participant read settles the window as usual.
	status, body := api.do(t, http.MethodGet, base, aToken, nil)
	require.Equal(t, http.StatusOK, status)
	queue := body["motionQueue"].([]interface{})
	require.Equal(t, "approved", queue[0].(map[string]interface{})["status"])
}

func TestActivityLogRecordsMotionTrail(t *testing.T) {
	api := newTestAPI(t)
	_, chairToken := api.newUser(t, "Chair", "member")
	_, aToken := api.newUser(t, "Member A", "member")

	meetingID, joinCode := api.createMeeting(t, chairToken)
	status, _ := api.do(t, http.MethodPost, "/api/meetings/join", aToken, fiber.Map{"joinCode": joinCode})
	require.Equal(t, http.StatusOK, status)

	base := "/api/meetings/" + meetingID
	status, _ = api.do(t, http.MethodPost, base+"/propose-motion", aToken, fiber.Map{
		"name": "Budget", "description": "Approve Q3 budget",
	})
	require.Equal(t, http.StatusCreated, status)
	status, _ = api.do(t, http.MethodPost, base+"/motions/0/review", chairToken, fiber.Map{"action": "approve"})
	require.Equal(t, http.StatusOK, status)

	status, body := api.do(t, http.MethodGet, base+"/activity", aToken, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, float64(3), body["total"], "join, propose and review are logged")

	entries := body["activities"].([]interface{})
	seen := map[string]bool{}
	for _, e := range entries {
		seen[e.(map[string]interface{})["actionType"].(string)] = true
	}
	require.True(t, seen["member_joined"])
	require.True(t, seen["motion_proposed"])
	require.True(t, seen["motion_approved"])
}

package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"github.com/okian/oche/internal/adapters/http/api"
	service "github.com/okian/oche/internal/app"
	"github.com/okian/oche/internal/domain/aiming"
	"github.com/okian/oche/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func post(t *testing.T, url string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	resp, err := http.Post(url, "application/json", &buf)
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		_ = json.NewDecoder(resp.Body).Decode(out)
	}
	return resp.StatusCode
}

func TestStreamEndToEnd(t *testing.T) {
	Convey("Given a running service behind the API", t, func() {
		svc := service.New(
			service.WithWorkerCount(1),
			service.WithAimOptions(aiming.WithReleaseDelay(time.Millisecond)),
		)
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()

		router := httprouter.New()
		api.NewServer(svc).Register(context.Background(), router)
		srv := httptest.NewServer(router)
		defer srv.Close()

		var g types.Game
		So(post(t, srv.URL+"/games", types.NewGame{Players: 2, Variant: "drag"}, &g), ShouldEqual, http.StatusCreated)

		wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/games/" + g.ID + "/stream"
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		So(err, ShouldBeNil)
		defer conn.Close()

		var first types.Update
		So(conn.ReadJSON(&first), ShouldBeNil)
		So(first.Type, ShouldEqual, types.UpdateGame)

		Convey("When the player drags and releases", func() {
			base := srv.URL + "/games/" + g.ID + "/aim/pointer"
			So(post(t, base, types.PointerEvent{Type: "down", X: 100, Y: 100}, nil), ShouldEqual, http.StatusAccepted)
			So(post(t, base, types.PointerEvent{Type: "move", X: 130, Y: 140}, nil), ShouldEqual, http.StatusAccepted)
			So(post(t, base, types.PointerEvent{Type: "up"}, nil), ShouldEqual, http.StatusAccepted)

			Convey("Then the stream carries aim updates and the scored throw", func() {
				_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
				var sawAim bool
				var th *types.Throw
				for th == nil {
					var u types.Update
					if err := conn.ReadJSON(&u); err != nil {
						break
					}
					switch u.Type {
					case types.UpdateAim:
						sawAim = true
					case types.UpdateThrow:
						th = u.Throw
					}
				}
				So(sawAim, ShouldBeTrue)
				So(th, ShouldNotBeNil)
				So(th.Points, ShouldEqual, 15)
				So(th.Impact.H, ShouldAlmostEqual, 59, 1e-9)
				So(th.Impact.V, ShouldAlmostEqual, 77, 1e-9)
				So(th.Result.Remaining, ShouldEqual, 486)
			})
		})

		Convey("When the oscillation lock is used on the drag game", func() {
			So(post(t, srv.URL+"/games/"+g.ID+"/aim/lock", nil, nil), ShouldEqual, http.StatusConflict)
		})

		Convey("When the game is deleted", func() {
			req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/games/"+g.ID, http.NoBody)
			resp, err := http.DefaultClient.Do(req)
			So(err, ShouldBeNil)
			resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusNoContent)

			Convey("Then the stream is closed by the server", func() {
				_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
				var err error
				for err == nil {
					var u types.Update
					err = conn.ReadJSON(&u)
				}
				So(websocket.IsCloseError(err, websocket.CloseGoingAway), ShouldBeTrue)
			})
		})
	})
}

package api_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/outpost-run/outpost/pkg/api"
	"github.com/outpost-run/outpost/pkg/api/types/apps"
	"github.com/outpost-run/outpost/pkg/api/types/objects"
	"github.com/outpost-run/outpost/pkg/utils/cmp"
	"github.com/outpost-run/outpost/pkg/utils/try"
)

func TestCreateApp(t *testing.T) {
	t.Run("when the server accepts, it returns the new app detail", func(t *testing.T) {
		var gotBody map[string]string
		var gotAuth string

		h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Error("unexpected http method:", r.Method)
			}
			if r.URL.Path != "/apps" {
				t.Error("unexpected path:", r.URL.Path)
			}
			if r.Header.Get("Content-Type") != "application/json" {
				t.Error("unmatch header Content-Type.")
			}
			gotAuth = r.Header.Get("Authorization")
			defer r.Body.Close()
			if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
				t.Error("cannot read request body:", err)
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(apps.Detail{AppID: "app-1", Name: "my-app"})
		})
		ts := httptest.NewServer(h)
		defer ts.Close()

		client := try.To(api.NewClient(ts.URL, api.WithToken("test-token"))).OrFatal(t)
		detail := try.To(client.CreateApp(context.Background(), "my-app")).OrFatal(t)

		if detail.AppID != "app-1" || detail.Name != "my-app" {
			t.Errorf("unexpected detail: %+v", detail)
		}
		if gotBody["name"] != "my-app" {
			t.Errorf("unexpected request body: %+v", gotBody)
		}
		if gotAuth != "Bearer test-token" {
			t.Errorf("unexpected authorization header: %q", gotAuth)
		}
	})

	t.Run("when the server responds 4xx with an error message, it is surfaced", func(t *testing.T) {
		h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"message": {"reason": "app already exists", "advice": "pick another name"}}`))
		})
		ts := httptest.NewServer(h)
		defer ts.Close()

		client := try.To(api.NewClient(ts.URL)).OrFatal(t)
		_, err := client.CreateApp(context.Background(), "my-app")
		if err == nil {
			t.Fatal("an error should be returned")
		}
		if !strings.Contains(err.Error(), "app already exists") {
			t.Errorf("the server's reason should be surfaced: %s", err)
		}
	})
}

func TestGetDeployment(t *testing.T) {
	t.Run("when the deployment exists, it is returned with the namespace query", func(t *testing.T) {
		h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				t.Error("unexpected http method:", r.Method)
			}
			if r.URL.Path != "/deployments/my-app" {
				t.Error("unexpected path:", r.URL.Path)
			}
			if ns := r.URL.Query().Get("namespace"); ns != "account" {
				t.Error("unexpected namespace:", ns)
			}

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(apps.Deployment{
				AppID: "app-7", Name: "my-app", LastLogCursor: "c-9",
			})
		})
		ts := httptest.NewServer(h)
		defer ts.Close()

		client := try.To(api.NewClient(ts.URL)).OrFatal(t)
		dep := try.To(client.GetDeployment(context.Background(), "my-app", "account")).OrFatal(t)

		if dep.AppID != "app-7" || dep.LastLogCursor != "c-9" {
			t.Errorf("unexpected deployment: %+v", dep)
		}
	})

	t.Run("when the name was never deployed, an empty deployment is no error", func(t *testing.T) {
		h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{}`))
		})
		ts := httptest.NewServer(h)
		defer ts.Close()

		client := try.To(api.NewClient(ts.URL)).OrFatal(t)
		dep := try.To(client.GetDeployment(context.Background(), "never-deployed", "account")).OrFatal(t)
		if dep.AppID != "" {
			t.Errorf("unexpected deployment: %+v", dep)
		}
	})
}

func TestObjects(t *testing.T) {
	t.Run("when an object is created, the manifest and existing id are sent", func(t *testing.T) {
		var gotBody struct {
			Manifest   objects.Manifest `json:"manifest"`
			ExistingID string           `json:"existingId"`
		}

		h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Error("unexpected http method:", r.Method)
			}
			if r.URL.Path != "/apps/app-1/objects" {
				t.Error("unexpected path:", r.URL.Path)
			}
			defer r.Body.Close()
			if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
				t.Error("cannot read request body:", err)
			}

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"objectId": "secret-1"}`))
		})
		ts := httptest.NewServer(h)
		defer ts.Close()

		client := try.To(api.NewClient(ts.URL)).OrFatal(t)
		manifest := objects.Manifest{
			Kind:   "secret",
			Secret: &objects.Secret{Env: map[string]string{"KEY": "value"}},
		}
		id := try.To(client.CreateObject(
			context.Background(), "app-1", manifest, "secret-0",
		)).OrFatal(t)

		if id != "secret-1" {
			t.Errorf("unexpected object id: %q", id)
		}
		if gotBody.ExistingID != "secret-0" {
			t.Errorf("unexpected existing id: %q", gotBody.ExistingID)
		}
		if gotBody.Manifest.Kind != "secret" || gotBody.Manifest.Secret == nil {
			t.Errorf("unexpected manifest: %+v", gotBody.Manifest)
		}
	})

	t.Run("when an include misses, the empty object id is passed through", func(t *testing.T) {
		h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/apps/app-1/include" {
				t.Error("unexpected path:", r.URL.Path)
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"objectId": ""}`))
		})
		ts := httptest.NewServer(h)
		defer ts.Close()

		client := try.To(api.NewClient(ts.URL)).OrFatal(t)
		id := try.To(client.IncludeObject(
			context.Background(), "app-1", "other-app", "model", "account",
		)).OrFatal(t)
		if id != "" {
			t.Errorf("unexpected object id: %q", id)
		}
	})

	t.Run("when the object map is published, it is sent as a PUT", func(t *testing.T) {
		var gotBody struct {
			ObjectIDs map[string]string `json:"objectIds"`
		}
		h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPut {
				t.Error("unexpected http method:", r.Method)
			}
			if r.URL.Path != "/apps/app-1/objects" {
				t.Error("unexpected path:", r.URL.Path)
			}
			defer r.Body.Close()
			if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
				t.Error("cannot read request body:", err)
			}
			w.WriteHeader(http.StatusOK)
		})
		ts := httptest.NewServer(h)
		defer ts.Close()

		client := try.To(api.NewClient(ts.URL)).OrFatal(t)
		published := map[string]string{"handler": "function-1", "creds": "secret-1"}
		if err := client.SetObjects(context.Background(), "app-1", published); err != nil {
			t.Fatal(err)
		}
		if !cmp.MapEq(gotBody.ObjectIDs, published) {
			t.Errorf("unexpected published map: %+v", gotBody.ObjectIDs)
		}
	})

	t.Run("when the map is fetched and the server omits objectIds, an empty map comes back", func(t *testing.T) {
		h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"lastLogCursor": "c-3"}`))
		})
		ts := httptest.NewServer(h)
		defer ts.Close()

		client := try.To(api.NewClient(ts.URL)).OrFatal(t)
		om := try.To(client.GetObjects(context.Background(), "app-1")).OrFatal(t)
		if om.ObjectIDs == nil || len(om.ObjectIDs) != 0 {
			t.Errorf("unexpected object map: %+v", om)
		}
		if om.LastLogCursor != "c-3" {
			t.Errorf("unexpected cursor: %q", om.LastLogCursor)
		}
	})
}

func TestDeployAndDisconnect(t *testing.T) {
	t.Run("when an app is deployed, name and namespace are sent", func(t *testing.T) {
		var gotBody map[string]string
		h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPut {
				t.Error("unexpected http method:", r.Method)
			}
			if r.URL.Path != "/apps/app-1/deploy" {
				t.Error("unexpected path:", r.URL.Path)
			}
			defer r.Body.Close()
			if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
				t.Error("cannot read request body:", err)
			}
			w.WriteHeader(http.StatusOK)
		})
		ts := httptest.NewServer(h)
		defer ts.Close()

		client := try.To(api.NewClient(ts.URL)).OrFatal(t)
		if err := client.Deploy(context.Background(), "app-1", "my-app", "account"); err != nil {
			t.Fatal(err)
		}
		if gotBody["name"] != "my-app" || gotBody["namespace"] != "account" {
			t.Errorf("unexpected request body: %+v", gotBody)
		}
	})

	t.Run("when the client disconnects, the app id is in the path", func(t *testing.T) {
		called := false
		h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			if r.Method != http.MethodPost {
				t.Error("unexpected http method:", r.Method)
			}
			if r.URL.Path != "/apps/app-1/disconnect" {
				t.Error("unexpected path:", r.URL.Path)
			}
			w.WriteHeader(http.StatusOK)
		})
		ts := httptest.NewServer(h)
		defer ts.Close()

		client := try.To(api.NewClient(ts.URL)).OrFatal(t)
		if err := client.Disconnect(context.Background(), "app-1"); err != nil {
			t.Fatal(err)
		}
		if !called {
			t.Error("the server should have been called")
		}
	})
}

func TestLogs(t *testing.T) {
	t.Run("when logs are streamed, cursor and follow become query params", func(t *testing.T) {
		h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/apps/app-1/logs" {
				t.Error("unexpected path:", r.URL.Path)
			}
			q := r.URL.Query()
			if q.Get("cursor") != "c-9" || q.Get("follow") != "true" {
				t.Error("unexpected query:", q)
			}

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"cursor": "c-10", "line": "hello"}` + "\n"))
		})
		ts := httptest.NewServer(h)
		defer ts.Close()

		client := try.To(api.NewClient(ts.URL)).OrFatal(t)
		rc := try.To(client.Logs(context.Background(), "app-1", "c-9", true)).OrFatal(t)
		defer rc.Close()

		content := try.To(io.ReadAll(rc)).OrFatal(t)
		if !strings.Contains(string(content), `"hello"`) {
			t.Errorf("unexpected stream content: %q", content)
		}
	})

	t.Run("when the stream is refused, the error carries the server message", func(t *testing.T) {
		h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message": {"reason": "no such app"}}`))
		})
		ts := httptest.NewServer(h)
		defer ts.Close()

		client := try.To(api.NewClient(ts.URL)).OrFatal(t)
		_, err := client.Logs(context.Background(), "app-1", "", false)
		if err == nil {
			t.Fatal("an error should be returned")
		}
		if !strings.Contains(err.Error(), "no such app") {
			t.Errorf("the server's reason should be surfaced: %s", err)
		}
	})
}

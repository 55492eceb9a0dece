package outbox

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnsureSchemaReturnsLatest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/subjects/workout_summaries-value/versions/latest", r.URL.Path)
		_, _ = w.Write([]byte(`{"id": 11, "version": 3}`))
	}))
	defer srv.Close()

	id, err := NewSchemaRegistryClient(srv.URL+"/").EnsureSchema(context.Background(), "workout_summaries-value", workoutSummarizedSchema)
	require.NoError(t, err)
	require.Equal(t, 11, id)
}

func TestEnsureSchemaRegistersUnknownSubject(t *testing.T) {
	var registered string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		require.Equal(t, "/subjects/workout_summaries-value/versions", r.URL.Path)
		var body struct {
			SchemaType string `json:"schemaType"`
			Schema     string `json:"schema"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "JSON", body.SchemaType)
		registered = body.Schema
		_, _ = w.Write([]byte(`{"id": 42}`))
	}))
	defer srv.Close()

	id, err := NewSchemaRegistryClient(srv.URL).EnsureSchema(context.Background(), "workout_summaries-value", workoutSummarizedSchema)
	require.NoError(t, err)
	require.Equal(t, 42, id)
	require.JSONEq(t, workoutSummarizedSchema, registered)
}

func TestEnsureSchemaDoesNotRegisterOnServerError(t *testing.T) {
	posts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			posts++
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewSchemaRegistryClient(srv.URL).EnsureSchema(context.Background(), "workout_summaries-value", workoutSummarizedSchema)
	require.ErrorContains(t, err, "500")
	require.Zero(t, posts)
}

func TestEnsureSchemaSendsRegistryMediaType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, registryContentType, r.Header.Get("Accept"))
		if r.Method == http.MethodGet {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		require.Equal(t, registryContentType, r.Header.Get("Content-Type"))
		w.Header().Set("Content-Type", registryContentType)
		_, _ = w.Write([]byte(`{"id": 5}`))
	}))
	defer srv.Close()

	id, err := NewSchemaRegistryClient(srv.URL).EnsureSchema(context.Background(), "workout_summaries-value", workoutSummarizedSchema)
	require.NoError(t, err)
	require.Equal(t, 5, id)
}

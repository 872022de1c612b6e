package api

import (
	"net/http"

	"github.com/dunamismax/sitecms/internal/domain"
	"github.com/dunamismax/sitecms/internal/store"
)

// The helpers below hold the request flow shared by every record type.

func listRecords[T any, PT interface {
	*T
	domain.Record
}](s *Server, w http.ResponseWriter, r *http.Request, repo *store.Repository[T, PT], filter store.Filter) {
	records, err := repo.List(r.Context(), filter)
	if err != nil {
		s.internalError(w, r, "list "+repo.Collection()+" failed", err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func getRecord[T any, PT interface {
	*T
	domain.Record
}](s *Server, w http.ResponseWriter, r *http.Request, repo *store.Repository[T, PT], notFound string) {
	recordID, ok := pathID(w, r, notFound)
	if !ok {
		return
	}
	record, found, err := repo.Get(r.Context(), recordID)
	if err != nil {
		s.internalError(w, r, "get "+repo.Collection()+" failed", err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, notFound)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func createRecord[T any, PT interface {
	*T
	domain.Record
}](s *Server, w http.ResponseWriter, r *http.Request, repo *store.Repository[T, PT], record *T) bool {
	if err := repo.Create(r.Context(), record); err != nil {
		s.internalError(w, r, "create "+repo.Collection()+" failed", err)
		return false
	}
	writeJSON(w, http.StatusCreated, record)
	return true
}

// patchRecord applies the non-empty fields of update to the record named by
// the path id and writes the result.
func patchRecord[T any, PT interface {
	*T
	domain.Record
}](s *Server, w http.ResponseWriter, r *http.Request, repo *store.Repository[T, PT], recordID, notFound string, update any) {
	fields, err := domain.PatchFields(update)
	if err != nil {
		s.internalError(w, r, "encode "+repo.Collection()+" update failed", err)
		return
	}

	var (
		record *T
		found  bool
	)
	if len(fields) == 0 {
		record, found, err = repo.Get(r.Context(), recordID)
	} else {
		record, found, err = repo.Update(r.Context(), recordID, fields)
	}
	if err != nil {
		s.internalError(w, r, "update "+repo.Collection()+" failed", err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, notFound)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func deleteRecord[T any, PT interface {
	*T
	domain.Record
}](s *Server, w http.ResponseWriter, r *http.Request, repo *store.Repository[T, PT], notFound, deleted string) {
	recordID, ok := pathID(w, r, notFound)
	if !ok {
		return
	}
	removed, err := repo.Delete(r.Context(), recordID)
	if err != nil {
		s.internalError(w, r, "delete "+repo.Collection()+" failed", err)
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, notFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": deleted})
}

package handlers

import (
	"encoding/json"
	"net/http"

	"blogservice/pkg/taxonomy"
	"blogservice/pkg/user"
)

type Response struct {
	Message string `json:"message"`
}

type CustomError struct {
	Location string `json:"location"`
	Param    string `json:"param"`
	Value    string `json:"value"`
	Msg      string `json:"msg"`
}

type ErrorsResponse struct {
	Errors []*CustomError `json:"errors"`
}

type Author struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type TaxonomyResponse struct {
	ID   interface{} `json:"id"`
	Name string      `json:"name"`
}

type UsersRepo interface {
	GetByID(id int64) (*user.User, error)
}

func WriteResponse(w http.ResponseWriter, msg string, status int) {
	resp := &Response{Message: msg}
	res, err := json.Marshal(resp)
	if err != nil {
		w.WriteHeader(status)
		return
	}

	w.WriteHeader(status)
	w.Write(res)
}

func writeErrorsResponse(w http.ResponseWriter, errors []*CustomError, status int) {
	errorsJSON, err := json.Marshal(&ErrorsResponse{Errors: errors})
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	w.Write(errorsJSON)
}

// resolveAuthor maps an actor id to its displayable identity. Unknown ids
// (the mirror can lag the auth service) come back with the id alone.
func resolveAuthor(ur UsersRepo, id int64) (*Author, error) {
	u, err := ur.GetByID(id)
	if err != nil {
		return nil, err
	}

	if u == nil {
		return &Author{ID: id}, nil
	}

	return &Author{ID: u.ID, Username: u.Username}, nil
}

// mapToTaxonomyResponses shapes reference ids into {id, name} pairs, in
// reference order.
func mapToTaxonomyResponses(ids []interface{}, entities []*taxonomy.Entity) []*TaxonomyResponse {
	names := make(map[interface{}]string, len(entities))
	for _, e := range entities {
		names[e.ID] = e.Name
	}

	result := make([]*TaxonomyResponse, 0, len(ids))
	for _, id := range ids {
		result = append(result, &TaxonomyResponse{ID: id, Name: names[id]})
	}

	return result
}

package cma

import (
	"context"
	"fmt"
	"net/http"
	"sync"
)

// Creation is the pending result of an asynchronous CreateContentType call.
// It resolves exactly once.
type Creation struct {
	done chan struct{}
	ct   ContentType
	err  error
}

// NewCreation returns an unresolved Creation and the function that resolves
// it. Only the first call to resolve has any effect.
func NewCreation() (*Creation, func(ContentType, error)) {
	cr := &Creation{done: make(chan struct{})}
	var once sync.Once
	resolve := func(ct ContentType, err error) {
		once.Do(func() {
			cr.ct, cr.err = ct, err
			close(cr.done)
		})
	}
	return cr, resolve
}

// Done is closed once the create request has finished, successfully or not.
func (cr *Creation) Done() <-chan struct{} {
	return cr.done
}

// Result blocks until the creation finishes and returns the created content
// type (in draft state) or the failure.
func (cr *Creation) Result() (ContentType, error) {
	<-cr.done
	return cr.ct, cr.err
}

// createRequest is the body accepted by the create endpoints. System fields
// are not part of it.
type createRequest struct {
	Name         string  `json:"name"`
	Description  string  `json:"description,omitempty"`
	DisplayField string  `json:"displayField,omitempty"`
	Fields       []Field `json:"fields"`
}

// CreateContentType dispatches the creation of ct in the space and returns
// immediately. When ct.Sys.ID is set the content type is created under that
// id; otherwise the API assigns one. The request is bound to ctx.
func (c *Client) CreateContentType(ctx context.Context, spaceID string, ct ContentType) *Creation {
	cr, resolve := NewCreation()

	go func() {
		resolve(c.createContentType(ctx, spaceID, ct))
	}()

	return cr
}

func (c *Client) createContentType(ctx context.Context, spaceID string, ct ContentType) (ContentType, error) {
	body := createRequest{
		Name:         ct.Name,
		Description:  ct.Description,
		DisplayField: ct.DisplayField,
		Fields:       ct.Fields,
	}

	method, path := http.MethodPost, c.collectionPath(spaceID)
	if ct.Sys.ID != "" {
		method, path = http.MethodPut, c.itemPath(spaceID, ct.Sys.ID)
	}

	var created ContentType
	err := c.execute(func() error {
		return c.do(ctx, method, path, nil, body, nil, &created)
	})
	if err != nil {
		return ContentType{}, fmt.Errorf("creating content type %q: %w", ct.Name, err)
	}
	return created, nil
}

package router

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/questforge-lab/backend/pkg/errorx"
	"github.com/questforge-lab/backend/pkg/ws"
	"github.com/questforge-lab/backend/pkg/xcontext"

	"github.com/gorilla/websocket"
	"github.com/mitchellh/mapstructure"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

func wrapHandler[Request, Response any](
	r *Router,
	method string,
	handler HandlerFunc[Request, Response],
) http.HandlerFunc {
	return func(w http.ResponseWriter, httpReq *http.Request) {
		ctx := xcontext.WithHTTPRequest(r.ctx, httpReq)

		resp, err := func() (*Response, error) {
			if httpReq.Method != method {
				return nil, errorx.New(errorx.BadRequest, "Not supported method %s", httpReq.Method)
			}

			for _, middleware := range r.befores {
				// Keep the previous context when a middleware fails, so the
				// closers still observe the request.
				next, err := middleware(ctx)
				if err != nil {
					return nil, err
				}
				ctx = next
			}

			var err error
			var req Request
			switch method {
			case http.MethodGet:
				err = bindQuery(httpReq, &req)
			case http.MethodPost:
				err = bindBody(httpReq, &req)
			}
			if err != nil {
				xcontext.Logger(ctx).Debugf("Cannot bind the request: %v", err)
				return nil, errorx.New(errorx.BadRequest, "Cannot bind the request")
			}

			resp, err := handler(ctx, &req)
			if err != nil {
				return nil, err
			}

			for _, middleware := range r.afters {
				next, err := middleware(ctx)
				if err != nil {
					return nil, err
				}
				ctx = next
			}

			return resp, nil
		}()

		if err != nil {
			ctx = xcontext.WithError(ctx, err)
			if writeErr := WriteJson(w, NewErrorResponse(err)); writeErr != nil {
				xcontext.Logger(ctx).Errorf("Cannot write the error response: %v", writeErr)
			}
		} else if writeErr := WriteJson(w, newResponse(resp)); writeErr != nil {
			xcontext.Logger(ctx).Errorf("Cannot write the response: %v", writeErr)
		}

		for _, closer := range r.closers {
			closer(ctx)
		}
	}
}

func wrapWebsocket[Request any](r *Router, handler WebsocketHandlerFunc[Request]) http.HandlerFunc {
	return func(w http.ResponseWriter, httpReq *http.Request) {
		ctx := xcontext.WithHTTPRequest(r.ctx, httpReq)

		err := func() error {
			for _, middleware := range r.befores {
				next, err := middleware(ctx)
				if err != nil {
					return err
				}
				ctx = next
			}

			var req Request
			if err := bindQuery(httpReq, &req); err != nil {
				xcontext.Logger(ctx).Debugf("Cannot bind the request: %v", err)
				return errorx.New(errorx.BadRequest, "Cannot bind the request")
			}

			conn, err := upgrader.Upgrade(w, httpReq, nil)
			if err != nil {
				xcontext.Logger(ctx).Errorf("Cannot upgrade the connection: %v", err)
				return errorx.Unknown
			}

			client := ws.NewClient(conn)
			defer client.Close()

			ctx = xcontext.WithWSClient(ctx, client)
			return handler(ctx, &req)
		}()

		if err != nil {
			ctx = xcontext.WithError(ctx, err)
			// This fails with ErrHijacked if the connection was already
			// upgraded. The closers still observe the error.
			if writeErr := WriteJson(w, NewErrorResponse(err)); writeErr != nil {
				xcontext.Logger(ctx).Debugf("Cannot write the error response: %v", writeErr)
			}
		}

		for _, closer := range r.closers {
			closer(ctx)
		}
	}
}

func bindQuery(httpReq *http.Request, target any) error {
	values := map[string]any{}
	for key, value := range httpReq.URL.Query() {
		if len(value) > 0 {
			values[key] = value[0]
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		TagName:          "json",
		Result:           target,
	})
	if err != nil {
		return err
	}

	return decoder.Decode(values)
}

func bindBody(httpReq *http.Request, target any) error {
	if err := json.NewDecoder(httpReq.Body).Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	return nil
}

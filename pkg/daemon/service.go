package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/sourcegraph/jsonrpc2"
	"src.rtorc.sh/pkg/daemon/daemondefs"
	"src.rtorc.sh/pkg/errs"
	"src.rtorc.sh/pkg/eval"
	"src.rtorc.sh/pkg/obj"
	"src.rtorc.sh/pkg/parse"
	"src.rtorc.sh/pkg/target"
)

// Code of the JSON-RPC errors for command failures that do not map to one of
// the codes defined by JSON-RPC.
const codeCommandFailed = -32000

var errNoResolver = errors.New("no engine attached")

// The service dispatches requests to an Evaler. Commands run with lock held.
type service struct {
	version int
	ev      *eval.Evaler
	lock    sync.Locker
}

func (s *service) handler() jsonrpc2.Handler {
	return jsonrpc2.HandlerWithError(s.handle)
}

func (s *service) handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
	switch req.Method {
	case daemondefs.MethodVersion:
		return s.version, nil
	case daemondefs.MethodPid:
		return os.Getpid(), nil
	}
	var params json.RawMessage
	if req.Params != nil {
		params = *req.Params
	}
	return s.call(req.Method, params)
}

func (s *service) call(name string, rawParams json.RawMessage) (any, error) {
	id, args, err := decodeParams(rawParams)
	if err != nil {
		return nil, invalidParams(err)
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	t, err := s.resolve(id)
	if err != nil {
		return nil, invalidParams(err)
	}
	result, err := s.ev.CallExternal(t, name, args)
	if err != nil {
		logger.Printf("%s on %q: %v", name, id, err)
		return nil, rpcError(err)
	}
	return fromObject(result), nil
}

func (s *service) resolve(id string) (target.Target, error) {
	kind, rid, err := daemondefs.ParseID(id)
	if err != nil {
		return target.None(), err
	}
	if kind == target.KindNone {
		return target.None(), nil
	}
	if s.ev.Resolver == nil {
		return target.None(), errNoResolver
	}
	return s.ev.Resolver.Resolve(kind, rid)
}

// Decodes a params array into a target ID and the arguments of a command.
func decodeParams(raw json.RawMessage) (string, obj.Object, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return "", obj.None(), nil
	}
	var elems []any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&elems); err != nil {
		return "", obj.None(), fmt.Errorf("params must be an array: %w", err)
	}
	if len(elems) == 0 {
		return "", obj.None(), nil
	}
	id, ok := elems[0].(string)
	if !ok {
		return "", obj.None(), fmt.Errorf("target id must be a string, got %v", elems[0])
	}
	args := make([]obj.Object, len(elems)-1)
	for i, v := range elems[1:] {
		o, err := toObject(v)
		if err != nil {
			return "", obj.None(), fmt.Errorf("argument %d: %w", i, err)
		}
		args[i] = o
	}
	switch len(args) {
	case 0:
		return id, obj.None(), nil
	case 1:
		return id, args[0], nil
	default:
		return id, obj.NewListFrom(args), nil
	}
}

// Converts a value decoded by encoding/json with UseNumber to an Object.
func toObject(v any) (obj.Object, error) {
	switch v := v.(type) {
	case nil:
		return obj.None(), nil
	case bool:
		return obj.NewBool(v), nil
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return obj.None(), fmt.Errorf("not an integer: %s", v)
		}
		return obj.NewValue(i), nil
	case string:
		return obj.NewString(v), nil
	case []any:
		elems := make([]obj.Object, len(v))
		for i, elem := range v {
			o, err := toObject(elem)
			if err != nil {
				return obj.None(), err
			}
			elems[i] = o
		}
		return obj.NewListFrom(elems), nil
	case map[string]any:
		m := make(map[string]obj.Object, len(v))
		for key, elem := range v {
			o, err := toObject(elem)
			if err != nil {
				return obj.None(), err
			}
			m[key] = o
		}
		return obj.NewMap(m), nil
	}
	return obj.None(), fmt.Errorf("unsupported value %v", v)
}

// Converts an Object to a value that encodes to JSON. None is encoded as 0.
func fromObject(o obj.Object) any {
	switch o.Kind() {
	case obj.KindValue:
		return o.AsValue()
	case obj.KindString:
		return o.AsString()
	case obj.KindList:
		elems := o.AsList()
		l := make([]any, len(elems))
		for i, elem := range elems {
			l[i] = fromObject(elem)
		}
		return l
	case obj.KindMap:
		m := make(map[string]any)
		for _, key := range o.Keys() {
			v, _ := o.Get(key)
			m[key] = fromObject(v)
		}
		return m
	case obj.KindCall:
		return parse.Repr(o)
	}
	return 0
}

func invalidParams(err error) *jsonrpc2.Error {
	return &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: err.Error()}
}

// Converts an error from the interpreter to a JSON-RPC error. The kind of the
// error is carried in the data field.
func rpcError(err error) *jsonrpc2.Error {
	kind := errs.Kind(err)
	var code int64
	switch kind {
	case errs.KindUnknownCommand, errs.KindNotExposed:
		code = jsonrpc2.CodeMethodNotFound
	case errs.KindArgumentShape, errs.KindWrongTarget, errs.KindSyntax:
		code = jsonrpc2.CodeInvalidParams
	default:
		code = codeCommandFailed
	}
	e := &jsonrpc2.Error{Code: code, Message: err.Error()}
	e.SetError(kind.String())
	return e
}

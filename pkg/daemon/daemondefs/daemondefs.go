// Package daemondefs contains definitions used for the daemon.
//
// It is a separate package so that packages that only depend on the daemon
// API does not need to depend on the concrete implementation.
//
// The daemon speaks JSON-RPC 2.0 over a unix socket. Every method that is not
// one of the Method constants below names a public command. Its params are a
// JSON array whose first element is a target ID and whose remaining elements
// are the arguments of the command: no arguments are passed as None, a single
// argument as itself and several as a list.
//
// Target IDs are:
//
//   - "" for the None target;
//   - the info hash for a download;
//   - "hash:pN", "hash:tN" and "hash:fN" for the Nth peer, tracker and file of
//     a download.
package daemondefs

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"src.rtorc.sh/pkg/target"
)

// Version is the API version. It should be bumped any time the API changes.
const Version = 1

// Methods that are not commands.
const (
	MethodVersion = "daemon.version"
	MethodPid     = "daemon.pid"
)

// Client represents a daemon client.
type Client interface {
	// Call invokes a command against the target identified by id, and stores
	// the result in the value pointed to by result, which may be nil.
	Call(ctx context.Context, name, id string, result any, args ...any) error

	ResetConn() error
	Close() error

	Pid() (int, error)
	SockPath() string
	Version() (int, error)
}

var subKinds = map[byte]target.Kind{
	'p': target.KindPeer,
	't': target.KindTracker,
	'f': target.KindFile,
}

// DownloadID returns the ID of a download.
func DownloadID(hash string) string { return hash }

// PeerID returns the ID of the ith peer of a download.
func PeerID(hash string, i int) string { return subID(hash, 'p', i) }

// TrackerID returns the ID of the ith tracker of a download.
func TrackerID(hash string, i int) string { return subID(hash, 't', i) }

// FileID returns the ID of the ith file of a download.
func FileID(hash string, i int) string { return subID(hash, 'f', i) }

func subID(hash string, c byte, i int) string {
	return hash + ":" + string(c) + strconv.Itoa(i)
}

// ParseID parses a target ID. It returns the kind of the target and its ID in
// the form understood by target.Resolver.
func ParseID(id string) (target.Kind, string, error) {
	if id == "" {
		return target.KindNone, "", nil
	}
	i := strings.IndexByte(id, ':')
	if i == -1 {
		return target.KindDownload, id, nil
	}
	hash, sub := id[:i], id[i+1:]
	if hash == "" || len(sub) < 2 {
		return 0, "", fmt.Errorf("bad target id %q", id)
	}
	kind, ok := subKinds[sub[0]]
	if !ok {
		return 0, "", fmt.Errorf("bad target id %q: unknown kind %q", id, sub[0])
	}
	n, err := strconv.Atoi(sub[1:])
	if err != nil || n < 0 {
		return 0, "", fmt.Errorf("bad target id %q: bad index", id)
	}
	return kind, hash + ":" + strconv.Itoa(n), nil
}

package connection

import "strings"

// lostConnectionMessages are substrings the teacher's DetectsLostConnections
// mixin matches against a driver error's message across MySQL, Postgres,
// SQLite and SQL Server client libraries. It is the same for every
// dialect; a caller can replace the predicate through
// SetLostConnectionPredicate, which no Connector does.
var lostConnectionMessages = []string{
	"server has gone away",
	"no connection to the server",
	"Lost connection",
	"is dead or not enabled",
	"Error while sending",
	"decryption failed or bad record mac",
	"server closed the connection unexpectedly",
	"SSL connection has been closed unexpectedly",
	"Error writing data to the connection",
	"Resource deadlock avoided",
	"Transaction() attribute must not be NULL",
	"child connection forced to terminate due to client_idle_limit",
	"query_wait_timeout",
	"reset by peer",
	"Physical connection is not usable",
	"TCP Provider: Error code 0x68",
	"ORA-03114",
	"Packets out of order. Expected",
	"Adaptive Server connection failed",
	"Communication link failure",
	"connection is no longer usable",
	"Login timeout expired",
	"SQLSTATE[HY000] [2002] Connection refused",
	"running with the --read-only option so it cannot execute this statement",
	"The connection is broken and recovery is not possible",
	"SSL: Broken pipe",
	"SQLSTATE[HY000]: General error: 7 SSL SYSCALL error: EOF detected",
	"SQLSTATE[HY000] [2002] Connection timed out",
	"SSL: Connection timed out",
	"SQLSTATE[HY000]: General error: 1105 The last transaction was rolled back",
	"Temporary failure in name resolution",
	"SSL: Handshake timed out",
	"sqlite3_step() returns 21",
	"sqlite3_prepare_v2() returns 21",
	"driver: bad connection",
	"broken pipe",
	"connection reset by peer",
	"use of closed network connection",
}

// defaultLostConnectionPredicate reports whether err's message matches
// one of the known lost-connection substrings. Connection.tryRun only
// consults this at transaction depth 0 (spec.md §4.8).
func defaultLostConnectionPredicate(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, substr := range lostConnectionMessages {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}

// deadlockMessages are substrings identifying a retryable deadlock or
// serialization failure, consulted by Transaction's retry loop.
var deadlockMessages = []string{
	"Deadlock found when trying to get lock",
	"deadlock detected",
	"The database file is locked",
	"database is locked",
	"database table is locked",
	"A table is locked",
	"SQLSTATE[40001]: Serialization failure",
	"SQLSTATE[41000]: Deadlock detected",
}

func defaultDeadlockPredicate(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, substr := range deadlockMessages {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}

package generator

// Sources is the fixed set of sources synthetic entries are drawn from.
var Sources = []string{"nginx", "mysql", "app", "k8s"}

// Levels are the levels the catalog draws from.
var Levels = []string{"INFO", "WARN", "ERROR"}

// Catalog holds representative messages per source.
var Catalog = map[string][]string{
	"nginx": {
		"GET /api/users 200 0.045s",
		"POST /api/login 200 0.123s",
		"upstream server timeout: proxy_read_timeout",
		"502 Bad Gateway",
		"connection reset by peer",
	},
	"mysql": {
		"Query executed successfully",
		"Slow query detected: SELECT * FROM logs WHERE created_at > '2025-08-10' - 2.3s",
		"Connection lost during query execution",
		"Index optimization completed",
		"Table lock wait detected",
	},
	"app": {
		"User authentication successful for user_id: 12345",
		"Failed to connect to Redis: ECONNREFUSED 127.0.0.1:6379",
		"Unhandled exception in payment service",
		"Cache hit for key: user_session_XYZ",
		"Rate limit exceeded for IP: 192.168.1.15",
	},
	"k8s": {
		"Pod log-processor started successfully",
		"Pod crashed and restarted: CrashLoopBackOff",
		"Node not ready: network issues",
		"Resource limits exceeded: CPU throttling",
		"PVC storage usage above 85%",
	},
}

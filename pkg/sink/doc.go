// Package sink opens report destinations.
//
// A target string selects where a report goes:
//
//	-                      standard output
//	s3://bucket/key        S3 object, uploaded when the writer is closed
//	anything else          local file; parent directories are created
//
// S3 clients are configured from the environment: AWS_REGION,
// AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY, AWS_SESSION_TOKEN and, for
// S3-compatible stores, AWS_ENDPOINT_URL.
package sink

package storage

import (
	"net/url"
	"path"
	"strings"

	"tabetl/internal/config"
)

// Descriptor locates a sink. Which fields matter depends on Kind:
//
//	file      Path
//	s3        Bucket, Key, Region, Endpoint, UsePathStyle, AccessKeyID, SecretAccessKey
//	gcs       Bucket, Key, CredentialsFile
//	azblob    Container, Key, ConnectionString
//	sqlite    DSN, Table
//	postgres  DSN, Table
//	mssql     DSN, Table
type Descriptor struct {
	Kind string

	Path string

	Bucket    string
	Container string
	Key       string

	Region          string
	Endpoint        string
	UsePathStyle    bool
	AccessKeyID     string
	SecretAccessKey string

	CredentialsFile  string
	ConnectionString string

	DSN   string
	Table string
}

// String identifies the destination. Credentials, connection strings and
// DSN passwords never appear in it.
func (d Descriptor) String() string {
	switch d.Kind {
	case "file":
		return "file:" + d.Path
	case "s3":
		return "s3://" + path.Join(d.Bucket, d.Key)
	case "gcs":
		return "gs://" + path.Join(d.Bucket, d.Key)
	case "azblob":
		return "azblob://" + path.Join(d.Container, d.Key)
	case "sqlite", "postgres", "mssql":
		return d.Kind + ":" + redactDSN(d.DSN) + "#" + d.Table
	default:
		return d.Kind + ":<unknown>"
	}
}

// redactDSN strips passwords from URL DSNs and reduces key=value DSNs
// (space separated, or semicolon separated ADO strings) to their host and
// database parts.
func redactDSN(dsn string) string {
	if u, err := url.Parse(dsn); err == nil && u.Scheme != "" && u.Host != "" {
		u.User = nil
		u.RawQuery = ""
		return u.String()
	}
	if !strings.Contains(dsn, "=") {
		return strings.SplitN(dsn, "?", 2)[0]
	}
	sep := " "
	fields := strings.Fields(dsn)
	if strings.Contains(dsn, ";") {
		sep = ";"
		fields = strings.Split(dsn, ";")
	}
	var keep []string
	for _, kv := range fields {
		k, _, _ := strings.Cut(kv, "=")
		switch strings.ToLower(strings.TrimSpace(k)) {
		case "host", "port", "dbname", "server", "database":
			keep = append(keep, strings.TrimSpace(kv))
		}
	}
	return strings.Join(keep, sep)
}

// FromConfig converts an entry of the sinks list.
func FromConfig(s config.Sink) Descriptor {
	return Descriptor{
		Kind:             s.Kind,
		Path:             s.Path,
		Bucket:           s.Bucket,
		Container:        s.Container,
		Key:              s.Key,
		Region:           s.Region,
		Endpoint:         s.Endpoint,
		UsePathStyle:     s.UsePathStyle,
		CredentialsFile:  s.CredentialsFile,
		ConnectionString: s.ConnectionString,
		DSN:              s.DSN,
		Table:            s.Table,
	}
}

// S3FromConfig converts the aws section into the reference object-store
// sink.
func S3FromConfig(a config.AWS) Descriptor {
	return Descriptor{
		Kind:            "s3",
		Bucket:          a.S3Bucket,
		Key:             a.S3Key,
		Region:          a.Region,
		Endpoint:        a.Endpoint,
		UsePathStyle:    a.UsePathStyle,
		AccessKeyID:     a.AccessKeyID,
		SecretAccessKey: a.SecretAccessKey,
	}
}

// File returns a local CSV file descriptor.
func File(path string) Descriptor { return Descriptor{Kind: "file", Path: path} }

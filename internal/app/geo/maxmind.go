package geo

import (
	"context"
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"
)

// MaxMindLocator resolves addresses against a local GeoLite2-City database.
type MaxMindLocator struct {
	db *geoip2.Reader
}

// OpenMaxMind opens the database at path.
func OpenMaxMind(path string) (*MaxMindLocator, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("geo: open maxmind db: %w", err)
	}
	return &MaxMindLocator{db: db}, nil
}

func (l *MaxMindLocator) Locate(_ context.Context, ip string) (Location, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return Location{}, ErrNoIP
	}

	record, err := l.db.City(parsed)
	if err != nil {
		return Location{}, fmt.Errorf("geo: maxmind lookup: %w", err)
	}

	loc := Location{
		Country: record.Country.Names["en"],
		City:    record.City.Names["en"],
	}
	if len(record.Subdivisions) > 0 {
		loc.Region = record.Subdivisions[0].Names["en"]
	}
	if loc.Country == "" && loc.City == "" && loc.Region == "" {
		return Location{}, ErrNotFound
	}
	return loc, nil
}

func (l *MaxMindLocator) Close() error {
	return l.db.Close()
}

package redis

import (
	"testing"

	"github.com/sifan077/PowerQR/config"
)

func TestOptions(t *testing.T) {
	opts := Options(config.RedisConfig{})
	if opts.Addr != "localhost:6379" {
		t.Fatalf("unexpected default addr %q", opts.Addr)
	}

	opts = Options(config.RedisConfig{Host: "cache", Port: 6380, DB: 2, Password: "pw"})
	if opts.Addr != "cache:6380" || opts.DB != 2 || opts.Password != "pw" {
		t.Fatalf("unexpected options %+v", opts)
	}
}

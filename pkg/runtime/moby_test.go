package runtime

import (
	"reflect"
	"testing"

	"github.com/docker/docker/api/types/mount"
)

func TestParseBindMounts(t *testing.T) {
	tests := []struct {
		name    string
		in      []string
		want    []mount.Mount
		wantErr bool
	}{
		{
			name: "read write",
			in:   []string{"/srv/data:/data"},
			want: []mount.Mount{
				{Type: mount.TypeBind, Source: "/srv/data", Target: "/data"},
			},
		},
		{
			name: "read only",
			in:   []string{"/srv/models:/models:ro"},
			want: []mount.Mount{
				{Type: mount.TypeBind, Source: "/srv/models", Target: "/models", ReadOnly: true},
			},
		},
		{
			name: "several",
			in:   []string{"/a:/a", "/b:/b:ro"},
			want: []mount.Mount{
				{Type: mount.TypeBind, Source: "/a", Target: "/a"},
				{Type: mount.TypeBind, Source: "/b", Target: "/b", ReadOnly: true},
			},
		},
		{
			name:    "missing target",
			in:      []string{"/srv/data"},
			wantErr: true,
		},
		{
			name:    "unknown option",
			in:      []string{"/srv/data:/data:z"},
			wantErr: true,
		},
		{
			name:    "empty source",
			in:      []string{":/data"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseBindMounts(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseBindMounts(%v) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseBindMounts(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

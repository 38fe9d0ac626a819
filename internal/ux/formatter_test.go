package ux

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/osvs/memberportal/internal/domain/member"
	"github.com/osvs/memberportal/internal/domain/notice"
)

func lodgeView() View {
	lodges := []member.Lodge{{ID: 1, Name: "Stockholm"}, {ID: 2, Name: "Göteborg"}}
	return View{
		Data:    lodges,
		Columns: []string{"ID", "NAME"},
		Cells:   [][]string{{"1", "Stockholm"}, {"2", "Göteborg"}},
	}
}

func TestNewFormatter_Unknown(t *testing.T) {
	if _, err := NewFormatter("xml", nil); err == nil {
		t.Error("NewFormatter(xml) expected error")
	}
}

func TestFormatters(t *testing.T) {
	tests := []struct {
		format string
		want   []string
	}{
		{"json", []string{`"name": "Stockholm"`, `"id": 2`}},
		{"yaml", []string{"name: Stockholm", "id: 2"}},
		{"table", []string{"ID", "NAME", "Stockholm", "Göteborg"}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			f, err := NewFormatter(tt.format, &FormatterOptions{Writer: &buf, NoColor: true})
			if err != nil {
				t.Fatalf("NewFormatter() error: %v", err)
			}
			if err := f.Format(lodgeView()); err != nil {
				t.Fatalf("Format() error: %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(buf.String(), w) {
					t.Errorf("output missing %q:\n%s", w, buf.String())
				}
			}
		})
	}
}

func TestTableFormatter_NonTabular(t *testing.T) {
	var buf bytes.Buffer
	f, _ := NewFormatter("table", &FormatterOptions{Writer: &buf})
	if err := f.Format(member.Lodge{ID: 1}); err == nil {
		t.Error("Format(struct) expected error in table mode")
	}
	if err := f.Format("not found"); err != nil {
		t.Fatalf("Format(string) error: %v", err)
	}
	if buf.String() != "not found\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestRecord(t *testing.T) {
	v := Record(member.User{ID: 7}, [2]string{"ID", "7"}, [2]string{"NAME", "Anna"})
	if len(v.Rows()) != 2 || v.Rows()[1][1] != "Anna" {
		t.Errorf("Rows() = %v", v.Rows())
	}
	if v.Header()[0] != "FIELD" {
		t.Errorf("Header() = %v", v.Header())
	}
}

func TestBanner_Listener(t *testing.T) {
	var buf bytes.Buffer
	b := NewBanner(&buf, true)
	c := notice.New(notice.WithDuration(time.Hour))
	defer c.Close()
	b.Attach(c)

	c.Set("Server error")
	c.Set("Server error")
	c.Clear()
	c.Set("Forbidden")

	want := "error: Server error\nerror: Forbidden\n"
	if buf.String() != want {
		t.Errorf("banner output = %q, want %q", buf.String(), want)
	}
	if got := b.Shown(); len(got) != 2 || got[1] != "Forbidden" {
		t.Errorf("Shown() = %v", got)
	}
}

func TestBanner_Styled(t *testing.T) {
	var buf bytes.Buffer
	b := NewBanner(&buf, false)
	b.Show("Request failed with status 502")
	if !strings.Contains(buf.String(), "Request failed with status 502") {
		t.Errorf("styled banner lost text: %q", buf.String())
	}
}

package logging

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// actionField marks an entry as the start of a pipe
const actionField = "action"

// BulletFormatter prints goreleaser-style bullets:
//
//	  * writing mac.zip                     (entry with an "action" field)
//	    * Created mac.zip                   (info)
//	    ! Duplicate archive entry ...       (warn)
//	  x writing mac.zip: ...                (error)
//
// Remaining fields are appended as sorted key=value pairs.
type BulletFormatter struct{}

func (f *BulletFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b strings.Builder

	if action, ok := entry.Data[actionField]; ok {
		fmt.Fprintf(&b, "  * %v", action)
		b.WriteString(formatFields(entry.Data, actionField))
		b.WriteByte('\n')
		return []byte(b.String()), nil
	}

	switch entry.Level {
	case logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel:
		b.WriteString("  x ")
	case logrus.WarnLevel:
		b.WriteString("    ! ")
	case logrus.InfoLevel:
		b.WriteString("    * ")
	default:
		b.WriteString("      ")
	}
	b.WriteString(entry.Message)
	b.WriteString(formatFields(entry.Data))
	b.WriteByte('\n')

	return []byte(b.String()), nil
}

// formatFields returns "  k1=v1 k2=v2" for fields not in skip, sorted by key,
// or "" when nothing remains.
func formatFields(fields logrus.Fields, skip ...string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		skipped := false
		for _, s := range skip {
			if k == s {
				skipped = true
				break
			}
		}
		if !skipped {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, fields[k])
	}
	return "  " + strings.Join(parts, " ")
}

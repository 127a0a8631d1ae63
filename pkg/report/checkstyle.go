package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// WriteCheckstyle writes the reports of a batch as checkstyle XML, the
// format most CI annotators understand.
func WriteCheckstyle(w io.Writer, files []File) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("checkstyle")
	root.CreateAttr("version", "8.0")

	for _, f := range files {
		fe := root.CreateElement("file")
		fe.CreateAttr("name", f.Name)
		c := f.Report.Classify()
		for _, cat := range Categories {
			for _, d := range c.Bucket(cat) {
				ee := fe.CreateElement("error")
				ee.CreateAttr("line", strconv.Itoa(d.Line))
				if d.Column > 0 {
					ee.CreateAttr("column", strconv.Itoa(d.Column))
				}
				ee.CreateAttr("severity", "error")
				ee.CreateAttr("message", d.Message)
				ee.CreateAttr("source", checkstyleSource(cat, d.CheckID))
			}
		}
	}

	doc.Indent(2)
	_, err := doc.WriteTo(w)
	return err
}

func checkstyleSource(cat Category, checkID string) string {
	src := "fntverify." + strings.ToLower(string(cat))
	if checkID != "" {
		src += "." + checkID
	}
	return src
}

package fuzztests

import (
	"testing"

	"shadec/internal/astio"
)

const maxFuzzInput = 1 << 16 // 64 KiB

// jsonSeeds are small documents covering each statement and expression kind.
var jsonSeeds = []string{
	`{"version":1,"decls":[]}`,
	`{"version":1,"decls":[{"kind":"var","name":"x","type":"float","span":{"start":0,"end":8}}]}`,
	`{"version":1,"decls":[{"kind":"fn","name":"main","type":"void","span":{"start":0,"end":20},
	  "body":{"kind":"block","span":{"start":10,"end":20},"stmts":[
	    {"kind":"decl","item":{"kind":"var","name":"v","type":"vec3"}},
	    {"kind":"expr","expr":{"kind":"binary","op":"=","left":{"kind":"field","name":"xy","target":{"kind":"ident","name":"v"}},
	      "right":{"kind":"call","name":"f","args":[]}}},
	    {"kind":"expr","expr":{"kind":"postfix","op":"++","operand":{"kind":"index","target":{"kind":"ident","name":"v"},"index":{"kind":"int","lit":"1"}}}}
	  ]}}]}`,
	`{"version":1,"decls":[{"kind":"fn","name":"f","type":"int","params":[{"kind":"var","name":"n","type":"int"}],
	  "body":{"kind":"block","stmts":[
	    {"kind":"while","cond":{"kind":"binary","op":"<","left":{"kind":"ident","name":"n"},"right":{"kind":"int","lit":"10"}},
	     "body":{"kind":"expr","expr":{"kind":"binary","op":"+=","left":{"kind":"ident","name":"n"},"right":{"kind":"int","lit":"2"}}}},
	    {"kind":"switch","expr":{"kind":"ident","name":"n"},"cases":[
	      {"label":{"kind":"int","lit":"1"},"body":[{"kind":"break"}]},
	      {"body":[{"kind":"return","expr":{"kind":"int","lit":"0"}}]}]},
	    {"kind":"for","init":{"kind":"empty"},"body":{"kind":"if","cond":{"kind":"bool","lit":"true"},
	      "then":{"kind":"break"},"else":{"kind":"continue"}}},
	    {"kind":"return","expr":{"kind":"unary","op":"-","operand":{"kind":"ident","name":"n"}}}
	  ]}}]}`,
	`{"version":2}`,
	`{"version":1,"decls":[{"kind":"struct"}]}`,
}

// addCorpusSeeds adds the JSON seeds to jsonFuzz targets and their msgpack
// encodings to msgpack targets.
func addCorpusSeeds(f *testing.F, format astio.Format) {
	f.Add([]byte{})
	for _, s := range jsonSeeds {
		if format == astio.FormatJSON {
			f.Add([]byte(s))
			continue
		}
		doc, err := astio.Unmarshal([]byte(s), astio.FormatJSON)
		if err != nil {
			continue
		}
		data, err := astio.Marshal(doc, astio.FormatMsgpack)
		if err != nil {
			continue
		}
		f.Add(data)
	}
}

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return append([]byte(nil), input[:maxFuzzInput]...)
	}
	return append([]byte(nil), input...)
}

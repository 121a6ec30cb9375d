// SPDX-License-Identifier: MPL-2.0

package intent

const (
	sigString   = "Ljava/lang/String;"
	sigCharSeq  = "Ljava/lang/CharSequence;"
	sigInt      = "I"
	sigVoidTail = ")V"
)

// signatures holds the method and field descriptors derived from Classes.
type signatures struct {
	intentField    string
	ctorAction     string
	ctorActionURI  string
	uriParse       string
	putExtra       string
	setType        string
	addFlags       string
	addCategory    string
	createChooser  string
	getStringExtra string
	getDataString  string
	startActivity  string
	startForResult string
	nextResult     string
}

func descriptor(class string) string { return "L" + class + ";" }

func (c Classes) signatures() signatures {
	in := descriptor(c.Intent)
	uri := descriptor(c.URI)
	return signatures{
		intentField:    in,
		ctorAction:     "(" + sigString + sigVoidTail,
		ctorActionURI:  "(" + sigString + uri + sigVoidTail,
		uriParse:       "(" + sigString + ")" + uri,
		putExtra:       "(" + sigString + sigString + ")" + in,
		setType:        "(" + sigString + ")" + in,
		addFlags:       "(" + sigInt + ")" + in,
		addCategory:    "(" + sigString + ")" + in,
		createChooser:  "(" + in + sigCharSeq + ")" + in,
		getStringExtra: "(" + sigString + ")" + sigString,
		getDataString:  "()" + sigString,
		startActivity:  "(" + in + sigVoidTail,
		startForResult: "(" + in + sigInt + sigVoidTail,
		nextResult:     "()" + descriptor(c.Result),
	}
}

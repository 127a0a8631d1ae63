package entity

import "sort"

// numeric maps named entities to their Unicode code points. It is never
// written after package initialization and is shared by concurrent
// validations.
var numeric = map[string]int{
	"AElig": 198, "Aacute": 193, "Abreve": 258, "Acirc": 194, "Agrave": 192,
	"Amacr": 256, "Aogon": 260, "Aring": 197, "Atilde": 195, "Auml": 196,
	"Cacute": 262, "Ccaron": 268, "Ccedil": 199, "Ccirc": 264, "Cdot": 266,
	"Dcaron": 270, "Dstrok": 272, "ENG": 330, "ETH": 208, "Eacute": 201,
	"Ecaron": 282, "Ecirc": 202, "Edot": 278, "Egrave": 200, "Emacr": 274,
	"Eogon": 280, "Euml": 203, "Gbreve": 286, "Gcedil": 290, "Gcirc": 284,
	"Gdot": 288, "Hcirc": 292, "Hstrok": 294, "IJlig": 306, "Iacute": 205,
	"Icirc": 206, "Idot": 304, "Igrave": 204, "Imacr": 298, "Iogon": 302,
	"Itilde": 296, "Iuml": 207, "Jcirc": 308, "Kcedil": 310, "Lacute": 313,
	"Lcaron": 317, "Lcedil": 315, "Lmidot": 319, "Lstrok": 321, "Nacute": 323,
	"Ncaron": 327, "Ncedil": 325, "Ntilde": 209, "OElig": 338, "Oacute": 211,
	"Ocirc": 212, "Odblac": 336, "Ograve": 210, "Omacr": 332, "Oslash": 216,
	"Otilde": 213, "Ouml": 214, "Racute": 340, "Rcaron": 344, "Rcedil": 342,
	"Sacute": 346, "Scaron": 352, "Scedil": 350, "Scirc": 348, "THORN": 222,
	"Tcaron": 356, "Tcedil": 354, "Tstrok": 358, "Uacute": 218, "Ubreve": 364,
	"Ucirc": 219, "Udblac": 368, "Ugrave": 217, "Umacr": 362, "Uogon": 370,
	"Uring": 366, "Utilde": 360, "Uuml": 220, "Wcirc": 372, "Yacute": 221,
	"Ycirc": 374, "Yuml": 376, "Zacute": 377, "Zcaron": 381, "Zdot": 379,
	"aacute": 225, "abreve": 259, "acirc": 226, "aelig": 230, "agrave": 224,
	"amacr": 257, "amp": 38, "aogon": 261, "aring": 229, "atilde": 227,
	"auml": 228, "cacute": 263, "ccaron": 269, "ccedil": 231, "ccirc": 265,
	"cdot": 267, "copy": 169, "dcaron": 271, "dstrok": 273, "eacute": 233,
	"ecaron": 283, "ecirc": 234, "edot": 279, "egrave": 232, "emacr": 275,
	"eng": 331, "eogon": 281, "eth": 240, "euml": 235, "gacute": 501,
	"gbreve": 287, "gcirc": 285, "gdot": 289, "gt": 62, "hcirc": 293,
	"hstrok": 295, "iacute": 237, "icirc": 238, "igrave": 236, "ijlig": 307,
	"imacr": 299, "inodot": 305, "iogon": 303, "itilde": 297, "iuml": 239,
	"jcirc": 309, "kcedil": 311, "kgreen": 312, "lacute": 314, "lcaron": 318,
	"lcedil": 316, "lmidot": 320, "lstrok": 322, "lt": 60, "mdash": 8212,
	"nacute": 324, "napos": 329, "nbsp": 160, "ncaron": 328, "ncedil": 326,
	"ntilde": 241, "oacute": 243, "ocirc": 244, "odblac": 337, "oelig": 339,
	"ograve": 242, "omacr": 333, "oslash": 248, "otilde": 245, "ouml": 246,
	"quot": 34, "racute": 341, "rcaron": 345, "rcedil": 343, "sacute": 347,
	"scaron": 353, "scedil": 351, "scirc": 349, "sect": 167, "szlig": 223,
	"tcaron": 357, "tcedil": 355, "thorn": 254, "tstrok": 359, "uacute": 250,
	"ubreve": 365, "ucirc": 251, "udblac": 369, "ugrave": 249, "umacr": 363,
	"uogon": 371, "uring": 367, "utilde": 361, "uuml": 252, "wcirc": 373,
	"yacute": 253, "ycirc": 375, "yuml": 255, "zacute": 378, "zcaron": 382,
	"zdot": 380,
}

// defaultAllowed is the set of named entities accepted without a custom
// declaration: the XML built-ins plus the dialect's typographic marks.
var defaultAllowed = map[string]bool{
	"amp": true, "lt": true, "gt": true, "quot": true, "apos": true,
	"mdash": true, "nbsp": true, "copy": true, "sect": true,
}

// CodePoint returns the code point a named entity resolves to.
func CodePoint(name string) (int, bool) {
	cp, ok := numeric[name]
	return cp, ok
}

// Names returns the resolvable entity names in sorted order.
func Names() []string {
	names := make([]string, 0, len(numeric))
	for name := range numeric {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultAllowed returns the default allowed entity names in sorted order.
func DefaultAllowed() []string {
	names := make([]string, 0, len(defaultAllowed))
	for name := range defaultAllowed {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

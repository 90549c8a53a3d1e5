package norm

import (
	"log/slog"
	"strings"

	"github.com/slidekit/slidekit/model"
)

// shapeCategories maps the external preset-geometry vocabulary (OOXML
// ST_ShapeType, lowercased) onto the editor's six canonical categories.
// Custom means the shape renders from its path descriptor.
var shapeCategories = map[string]model.ShapeCategory{
	// Emitted by front-end parsers for shapes carrying their own geometry
	// (custGeom); the path descriptor travels with the node.
	"custom": model.ShapeCustom,

	// Rectangles and rectangle-like frames.
	"rect":                       model.ShapeRectangle,
	"roundrect":                  model.ShapeRectangle,
	"round1rect":                 model.ShapeRectangle,
	"round2samerect":             model.ShapeRectangle,
	"round2diagrect":             model.ShapeRectangle,
	"snip1rect":                  model.ShapeRectangle,
	"snip2samerect":              model.ShapeRectangle,
	"snip2diagrect":              model.ShapeRectangle,
	"sniproundrect":              model.ShapeRectangle,
	"plaque":                     model.ShapeRectangle,
	"flowchartprocess":           model.ShapeRectangle,
	"flowchartpredefinedprocess": model.ShapeRectangle,
	"flowchartinternalstorage":   model.ShapeRectangle,
	"flowchartalternateprocess":  model.ShapeRectangle,
	"actionbuttonblank":          model.ShapeRectangle,

	// Circles and ellipses.
	"ellipse":                  model.ShapeCircle,
	"circle":                   model.ShapeCircle,
	"oval":                     model.ShapeCircle,
	"flowchartconnector":       model.ShapeCircle,
	"flowchartsummingjunction": model.ShapeCircle,
	"flowchartor":              model.ShapeCircle,

	// Triangles.
	"triangle":         model.ShapeTriangle,
	"rttriangle":       model.ShapeTriangle,
	"flowchartextract": model.ShapeTriangle,
	"flowchartmerge":   model.ShapeTriangle,

	// Diamonds.
	"diamond":           model.ShapeDiamond,
	"flowchartdecision": model.ShapeDiamond,

	// Stars and bursts.
	"star4":          model.ShapeStar,
	"star5":          model.ShapeStar,
	"star6":          model.ShapeStar,
	"star7":          model.ShapeStar,
	"star8":          model.ShapeStar,
	"star10":         model.ShapeStar,
	"star12":         model.ShapeStar,
	"star16":         model.ShapeStar,
	"star24":         model.ShapeStar,
	"star32":         model.ShapeStar,
	"irregularseal1": model.ShapeStar,
	"irregularseal2": model.ShapeStar,
}

// pathShapes lists tokens that classify as custom: recognized, but rendered
// from an explicit path rather than a canonical primitive.
var pathShapes = []string{
	// Basic geometry.
	"parallelogram", "trapezoid", "nonisoscelestrapezoid", "pentagon", "hexagon",
	"heptagon", "octagon", "decagon", "dodecagon", "pie", "piewedge", "chord",
	"teardrop", "frame", "halfframe", "corner", "diagstripe", "plus", "can",
	"cube", "bevel", "donut", "nosmoking", "blockarc", "foldedcorner",
	"smileyface", "heart", "lightningbolt", "sun", "moon", "cloud", "arc",
	"backorprevious", "gear6", "gear9", "funnel",
	"bracketpair", "bracepair", "leftbracket", "rightbracket", "leftbrace",
	"rightbrace", "cornertabs", "squaretabs", "plaquetabs",
	"chartx", "chartstar", "chartplus",

	// Arrows.
	"rightarrow", "leftarrow", "uparrow", "downarrow", "leftrightarrow",
	"updownarrow", "quadarrow", "leftrightuparrow", "bentarrow", "uturnarrow",
	"leftuparrow", "bentuparrow", "circulararrow", "leftcirculararrow",
	"leftrightcirculararrow", "curvedrightarrow", "curvedleftarrow",
	"curveduparrow", "curveddownarrow", "swoosharrow", "stripedrightarrow",
	"notchedrightarrow", "homeplate", "chevron",
	"rightarrowcallout", "downarrowcallout", "leftarrowcallout",
	"uparrowcallout", "leftrightarrowcallout", "updownarrowcallout",
	"quadarrowcallout",

	// Callouts.
	"callout1", "callout2", "callout3", "accentcallout1", "accentcallout2",
	"accentcallout3", "bordercallout1", "bordercallout2", "bordercallout3",
	"accentbordercallout1", "accentbordercallout2", "accentbordercallout3",
	"wedgerectcallout", "wedgeroundrectcallout", "wedgeellipsecallout",
	"cloudcallout",

	// Flowchart symbols without a primitive equivalent.
	"flowchartinputoutput", "flowchartdocument", "flowchartmultidocument",
	"flowchartterminator", "flowchartpreparation", "flowchartmanualinput",
	"flowchartmanualoperation", "flowchartofflinestorage",
	"flowchartonlinestorage", "flowchartmagnetictape", "flowchartmagneticdisk",
	"flowchartmagneticdrum", "flowchartdisplay", "flowchartdelay",
	"flowchartpunchedcard", "flowchartpunchedtape", "flowchartcollate",
	"flowchartsort", "flowchartoffpageconnector",

	// Action buttons.
	"actionbuttonhome", "actionbuttonhelp", "actionbuttoninformation",
	"actionbuttonforwardnext", "actionbuttonbackprevious", "actionbuttonend",
	"actionbuttonbeginning", "actionbuttonreturn", "actionbuttondocument",
	"actionbuttonsound", "actionbuttonmovie",

	// Ribbons, scrolls, waves, math.
	"ribbon", "ribbon2", "ellipseribbon", "ellipseribbon2", "leftrightribbon",
	"verticalscroll", "horizontalscroll", "wave", "doublewave",
	"mathplus", "mathminus", "mathmultiply", "mathdivide", "mathequal",
	"mathnotequal",

	// Connectors that arrive classified as shapes. A literal "line" token is
	// handled upstream by the element converter, which re-types the element.
	"straightconnector1", "bentconnector2", "bentconnector3", "bentconnector4",
	"bentconnector5", "curvedconnector2", "curvedconnector3",
	"curvedconnector4", "curvedconnector5", "lineinv",
}

func init() {
	for _, tok := range pathShapes {
		shapeCategories[tok] = model.ShapeCustom
	}
}

// ClassifyShape maps a raw shape-type token onto a canonical category.
// Matching is case-insensitive. Unknown tokens default to rectangle, logged
// at debug level so production imports stay quiet.
func ClassifyShape(token string) model.ShapeCategory {
	key := strings.ToLower(strings.TrimSpace(token))
	if cat, ok := shapeCategories[key]; ok {
		return cat
	}
	if key != "" {
		slog.Debug("unknown shape token, defaulting to rectangle", "token", token)
	}
	return model.ShapeRectangle
}

// IsPathShape reports whether the token's shape must be rendered from an
// explicit path descriptor.
func IsPathShape(token string) bool {
	return ClassifyShape(token) == model.ShapeCustom
}

package pptx

import "encoding/xml"

// emusPerPoint converts Office EMU coordinates to points.
const emusPerPoint = 12700

// xmlPresentation mirrors ppt/presentation.xml.
type xmlPresentation struct {
	XMLName xml.Name     `xml:"presentation"`
	SldSz   *xmlSlideSz  `xml:"sldSz"`
	SldIds  []xmlSlideID `xml:"sldIdLst>sldId"`
}

type xmlSlideSz struct {
	Cx int64 `xml:"cx,attr"`
	Cy int64 `xml:"cy,attr"`
}

type xmlSlideID struct {
	ID  string `xml:"id,attr"`
	RID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
}

// xmlSlide mirrors ppt/slides/slideN.xml.
type xmlSlide struct {
	XMLName xml.Name `xml:"sld"`
	CSld    struct {
		Bg     *xmlBg       `xml:"bg"`
		SpTree xmlShapeTree `xml:"spTree"`
	} `xml:"cSld"`
}

type xmlBg struct {
	BgPr *struct {
		SolidFill *xmlSolidFill `xml:"solidFill"`
		BlipFill  *xmlBlipFill  `xml:"blipFill"`
		GradFill  *xmlGradFill  `xml:"gradFill"`
	} `xml:"bgPr"`
}

// xmlShapeTree holds the drawable children of a slide or group.
type xmlShapeTree struct {
	GrpSpPr      xmlGrpSpPr        `xml:"grpSpPr"`
	Sp           []xmlShape        `xml:"sp"`
	CxnSp        []xmlConnector    `xml:"cxnSp"`
	Pic          []xmlPicture      `xml:"pic"`
	GraphicFrame []xmlGraphicFrame `xml:"graphicFrame"`
	GrpSp        []xmlGroup        `xml:"grpSp"`
}

type xmlGrpSpPr struct {
	Xfrm *xmlXfrm `xml:"xfrm"`
}

type xmlShape struct {
	NvSpPr struct {
		CNvPr xmlCNvPr `xml:"cNvPr"`
		NvPr  struct {
			Ph *xmlPh `xml:"ph"`
		} `xml:"nvPr"`
	} `xml:"nvSpPr"`
	SpPr   xmlSpPr    `xml:"spPr"`
	TxBody *xmlTxBody `xml:"txBody"`
}

type xmlCNvPr struct {
	ID   int    `xml:"id,attr"`
	Name string `xml:"name,attr"`
}

type xmlPh struct {
	Type string `xml:"type,attr"`
	Idx  int    `xml:"idx,attr"`
}

type xmlSpPr struct {
	Xfrm      *xmlXfrm      `xml:"xfrm"`
	PrstGeom  *xmlPrstGeom  `xml:"prstGeom"`
	CustGeom  *xmlCustGeom  `xml:"custGeom"`
	SolidFill *xmlSolidFill `xml:"solidFill"`
	GradFill  *xmlGradFill  `xml:"gradFill"`
	BlipFill  *xmlBlipFill  `xml:"blipFill"`
	NoFill    *struct{}     `xml:"noFill"`
	Ln        *xmlLn        `xml:"ln"`
}

type xmlXfrm struct {
	Rot   int64 `xml:"rot,attr"` // 1/60000 degree
	FlipH bool  `xml:"flipH,attr"`
	FlipV bool  `xml:"flipV,attr"`
	Off   *struct {
		X int64 `xml:"x,attr"`
		Y int64 `xml:"y,attr"`
	} `xml:"off"`
	Ext *struct {
		Cx int64 `xml:"cx,attr"`
		Cy int64 `xml:"cy,attr"`
	} `xml:"ext"`
	ChOff *struct {
		X int64 `xml:"x,attr"`
		Y int64 `xml:"y,attr"`
	} `xml:"chOff"`
}

type xmlPrstGeom struct {
	Prst string `xml:"prst,attr"`
}

type xmlCustGeom struct {
	PathLst struct {
		Path []struct {
			W int64 `xml:"w,attr"`
			H int64 `xml:"h,attr"`
		} `xml:"path"`
	} `xml:"pathLst"`
}

type xmlSolidFill struct {
	SrgbClr   *xmlSrgbClr `xml:"srgbClr"`
	SchemeClr *struct {
		Val string `xml:"val,attr"`
	} `xml:"schemeClr"`
}

type xmlSrgbClr struct {
	Val   string `xml:"val,attr"`
	Alpha *struct {
		Val int64 `xml:"val,attr"` // 1/1000 percent
	} `xml:"alpha"`
}

type xmlGradFill struct {
	Rot   int64 `xml:"rot,attr"`
	GsLst struct {
		Gs []struct {
			Pos     int64       `xml:"pos,attr"` // 1/1000 percent
			SrgbClr *xmlSrgbClr `xml:"srgbClr"`
		} `xml:"gs"`
	} `xml:"gsLst"`
	Lin *struct {
		Ang int64 `xml:"ang,attr"`
	} `xml:"lin"`
	Path *struct {
		PathType string `xml:"path,attr"`
	} `xml:"path"`
}

type xmlBlipFill struct {
	Blip *struct {
		Embed string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships embed,attr"`
	} `xml:"blip"`
}

type xmlLn struct {
	W         int64         `xml:"w,attr"`
	SolidFill *xmlSolidFill `xml:"solidFill"`
	PrstDash  *struct {
		Val string `xml:"val,attr"`
	} `xml:"prstDash"`
	HeadEnd *xmlLnEnd `xml:"headEnd"`
	TailEnd *xmlLnEnd `xml:"tailEnd"`
}

type xmlLnEnd struct {
	Type string `xml:"type,attr"`
}

// xmlConnector is a cxnSp element (straight and elbow connectors).
type xmlConnector struct {
	SpPr xmlSpPr `xml:"spPr"`
}

type xmlPicture struct {
	NvPicPr struct {
		CNvPr xmlCNvPr `xml:"cNvPr"`
		NvPr  struct {
			VideoFile *xmlMediaLink `xml:"videoFile"`
			AudioFile *xmlMediaLink `xml:"audioFile"`
		} `xml:"nvPr"`
	} `xml:"nvPicPr"`
	BlipFill xmlBlipFill `xml:"blipFill"`
	SpPr     xmlSpPr     `xml:"spPr"`
}

type xmlMediaLink struct {
	Link string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships link,attr"`
}

type xmlGraphicFrame struct {
	Xfrm    *xmlXfrm `xml:"xfrm"`
	Graphic struct {
		GraphicData struct {
			URI   string    `xml:"uri,attr"`
			Tbl   *xmlTable `xml:"tbl"`
			Chart *struct {
				RID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
			} `xml:"chart"`
		} `xml:"graphicData"`
	} `xml:"graphic"`
}

type xmlTable struct {
	TblGrid struct {
		GridCol []struct {
			W int64 `xml:"w,attr"`
		} `xml:"gridCol"`
	} `xml:"tblGrid"`
	Tr []struct {
		H  int64 `xml:"h,attr"`
		Tc []struct {
			RowSpan  int        `xml:"rowSpan,attr"`
			GridSpan int        `xml:"gridSpan,attr"`
			TxBody   *xmlTxBody `xml:"txBody"`
		} `xml:"tc"`
	} `xml:"tr"`
}

type xmlGroup struct {
	GrpSpPr xmlGrpSpPr        `xml:"grpSpPr"`
	Sp      []xmlShape        `xml:"sp"`
	CxnSp   []xmlConnector    `xml:"cxnSp"`
	Pic     []xmlPicture      `xml:"pic"`
	Frames  []xmlGraphicFrame `xml:"graphicFrame"`
	GrpSp   []xmlGroup        `xml:"grpSp"`
}

type xmlTxBody struct {
	BodyPr struct {
		Anchor string `xml:"anchor,attr"`
	} `xml:"bodyPr"`
	P []xmlParagraph `xml:"p"`
}

type xmlParagraph struct {
	PPr *struct {
		Algn   string    `xml:"algn,attr"`
		Lvl    int       `xml:"lvl,attr"`
		BuNone *struct{} `xml:"buNone"`
		BuChar *struct {
			Char string `xml:"char,attr"`
		} `xml:"buChar"`
		BuAutoNum *struct {
			Type string `xml:"type,attr"`
		} `xml:"buAutoNum"`
	} `xml:"pPr"`
	R  []xmlRun   `xml:"r"`
	Br []struct{} `xml:"br"`
}

type xmlRun struct {
	RPr *xmlRunProps `xml:"rPr"`
	T   string       `xml:"t"`
}

type xmlRunProps struct {
	Sz        int64         `xml:"sz,attr"` // 1/100 point
	B         *int          `xml:"b,attr"`
	I         *int          `xml:"i,attr"`
	U         string        `xml:"u,attr"`
	SolidFill *xmlSolidFill `xml:"solidFill"`
	Latin     *struct {
		Typeface string `xml:"typeface,attr"`
	} `xml:"latin"`
}

// xmlNotes mirrors ppt/notesSlides/notesSlideN.xml.
type xmlNotes struct {
	XMLName xml.Name `xml:"notes"`
	CSld    struct {
		SpTree xmlShapeTree `xml:"spTree"`
	} `xml:"cSld"`
}

// xmlRels mirrors a .rels part.
type xmlRels struct {
	XMLName       xml.Name `xml:"Relationships"`
	Relationships []struct {
		ID     string `xml:"Id,attr"`
		Type   string `xml:"Type,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

// xmlCoreProps mirrors docProps/core.xml.
type xmlCoreProps struct {
	XMLName xml.Name `xml:"coreProperties"`
	Title   string   `xml:"title"`
}

package report

import (
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
)

const (
	fnciDateLayout     = "2006-01-02 15:04:05"
	fnciPalamidaCompat = "6.1"
	fnciStatusID       = 2
	fnciPriorityID     = 6
)

// WriteFNCI writes a Palamida workspace import document: one group per
// unique dependency and one file entry per manifest listing the names of
// the dependencies it declares.
func WriteFNCI(w io.Writer, s *Set, m Meta) error {
	ws := fnciWorkspace{
		ExportDate:    m.GeneratedAt.Format(fnciDateLayout),
		Compat:        fnciPalamidaCompat,
		ScriptVersion: "",
		TimestampGMT:  m.GeneratedAt.Unix(),
		ServerName:    m.Hostname,
	}

	for _, d := range s.Unique() {
		ws.Groups.Group = append(ws.Groups.Group, fnciGroup{
			Name:                    d.Name + " " + d.Version,
			ID:                      -1,
			Owner:                   m.Owner,
			StatusID:                fnciStatusID,
			PriorityID:              fnciPriorityID,
			DistributionLicenseText: "License can be found at the website: " + d.License,
			URL:                     d.ProjectURL,
			Description:             d.Description,
			IsSystemGenerated:       false,
		})
	}

	for _, g := range s.Grouped() {
		f := fnciFile{FullPath: g.Manifest, FileName: filepath.Base(g.Manifest)}
		for _, d := range g.Dependencies {
			f.Groups.Group = append(f.Groups.Group, d.Name)
		}
		ws.Files.File = append(ws.Files.File, f)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(ws); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// empty marshals as an element without content.
type empty struct{}

type fnciWorkspace struct {
	XMLName       xml.Name   `xml:"palamidaWorkspace"`
	ExportDate    string     `xml:"exportDate,attr"`
	Compat        string     `xml:"exportScriptCompatibleWithPalamidaVersion,attr"`
	ScriptVersion string     `xml:"exportScriptVersion,attr"`
	TimestampGMT  int64      `xml:"exportTimestampGMT,attr"`
	ServerName    string     `xml:"serverName,attr"`
	Groups        fnciGroups `xml:"groups"`
	Files         fnciFiles  `xml:"files"`
}

// The wrapper types keep <groups> and <files> present when empty.
type fnciGroups struct {
	Group []fnciGroup `xml:"group"`
}

type fnciFiles struct {
	File []fnciFile `xml:"file"`
}

type fnciGroupRefs struct {
	Group []string `xml:"group"`
}

type fnciGroup struct {
	Name                          string `xml:"name,attr"`
	ID                            int    `xml:"id"`
	Owner                         string `xml:"owner"`
	Title                         empty  `xml:"title"`
	StatusID                      int    `xml:"statusId"`
	PriorityID                    int    `xml:"priorityId"`
	IsDisclosed                   empty  `xml:"isDisclosed"`
	IsIgnored                     empty  `xml:"isIgnored"`
	Component                     empty  `xml:"component"`
	ComponentVersion              empty  `xml:"componentVersion"`
	SelectedLicense               empty  `xml:"selectedLicense"`
	PossibleLicenses              empty  `xml:"possibleLicenses"`
	DistributionLicenseText       string `xml:"distributionLicenseText"`
	ExtNotes                      empty  `xml:"extNotes"`
	IntNotes                      empty  `xml:"intNotes"`
	IsEngineeringActionRequired   empty  `xml:"isEngineeringActionRequired"`
	IsLegalActionRequired         empty  `xml:"isLegalActionRequired"`
	AuditorReviewNotes            empty  `xml:"auditorReviewNotes"`
	DetectionNotes                empty  `xml:"detectionNotes"`
	FieldOfUse                    empty  `xml:"fieldOfUse"`
	IncludeInThirdPartyNotices    empty  `xml:"includeInThirdPartyNotices"`
	IsModified                    empty  `xml:"isModified"`
	NoticeCopyrightStatements     empty  `xml:"noticeCopyrightStatements"`
	NoticeLicenseText             empty  `xml:"noticeLicenseText"`
	NoticeLicenseURL              empty  `xml:"noticeLicenseURL"`
	NoticeOtherFlowThroughNotices empty  `xml:"noticeOtherFlowThroughNotices"`
	NoticeTitle                   empty  `xml:"noticeTitle"`
	NoticeTitleURL                empty  `xml:"noticeTitleURL"`
	IsShipped                     empty  `xml:"isShipped"`
	IsSourceDistributionRequired  empty  `xml:"isSourceDistributionRequired"`
	ThirdPartySourceURL           empty  `xml:"thirdPartySourceURL"`
	URL                           string `xml:"url"`
	Description                   string `xml:"description"`
	PublishedBy                   empty  `xml:"publishedBy"`
	IsPublished                   empty  `xml:"isPublished"`
	PublishedDate                 empty  `xml:"publishedDate"`
	IsRemediation                 empty  `xml:"isRemediation"`
	GroupMetadata                 empty  `xml:"groupMetadata"`
	IsSystemGenerated             bool   `xml:"isSystemGenerated"`
	SystemGeneratedGroupID        empty  `xml:"systemGeneratedGroupId"`
	UpdateDate                    empty  `xml:"updateDate"`
}

type fnciFile struct {
	FullPath string        `xml:"fullPath,attr"`
	FileName string        `xml:"fileName"`
	MD5      empty         `xml:"md5"`
	Groups   fnciGroupRefs `xml:"groups"`
}

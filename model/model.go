// Package model holds the messages exchanged with the frontend.
package model

import (
	"xrdplan/calculator"
	"xrdplan/detector"
	"xrdplan/geometry"
	"xrdplan/reference"
)

// Msg is the websocket envelope. Content carries the JSON encoded payload
// of the message type.
type Msg struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// request types
const (
	TypeInit      = "init"
	TypePose      = "pose"
	TypeDetector  = "detector"
	TypeReference = "reference"
	TypeUnit      = "unit"
)

// reply types
const (
	TypeLimits   = "limits"
	TypeModules  = "modules"
	TypeContours = "contours"
	TypeError    = "error"
)

// PoseUpdate sets one pose field.
type PoseUpdate struct {
	Token string  `json:"token"`
	Value float64 `json:"value"`
}

// DetectorSelect swaps the detector.
type DetectorSelect struct {
	Type string `json:"type"`
	Size string `json:"size"`
}

// ReferenceSelect picks a calibrant by name, or installs the reflections of
// a parsed structure when Reflections is set.
type ReferenceSelect struct {
	Name        string                 `json:"name"`
	Reflections []reference.Reflection `json:"reflections,omitempty"`
}

// UnitSelect switches the contour label unit.
type UnitSelect struct {
	Unit int `json:"unit"`
}

// Limits describes the input controls: current pose, the range of every
// pose field and the available choices.
type Limits struct {
	Pose       calculator.Pose             `json:"pose"`
	Limits     map[string]calculator.Limit `json:"limits"`
	Detectors  map[string][]string         `json:"detectors"`
	Calibrants []string                    `json:"calibrants"`
	Units      []string                    `json:"units"`
}

// Modules is the detector mosaic in viewport coordinates.
type Modules struct {
	Detector detector.Spec   `json:"detector"`
	Modules  []geometry.Rect `json:"modules"`
	Viewport geometry.Extent `json:"viewport"`
}

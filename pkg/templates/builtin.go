package templates

import (
	"github.com/forgecad/forgecad/pkg/design"
	"github.com/forgecad/forgecad/pkg/kernel"
)

func builtinTemplates() []*Template {
	return []*Template{
		boxTemplate(),
		enclosureTemplate(),
		phoneStandTemplate(),
		tableTemplate(),
		gearTemplate(),
		hingeTemplate(),
		hookTemplate(),
		bicycleTemplate(),
	}
}

func boxTemplate() *Template {
	return &Template{
		Name:     "box",
		Category: "container",
		Parameters: map[string]Parameter{
			"length":         {Type: "number", Description: "Length of the box", Min: num(10), Max: num(500), Unit: "mm", Required: true},
			"width":          {Type: "number", Description: "Width of the box", Min: num(10), Max: num(500), Unit: "mm", Required: true},
			"height":         {Type: "number", Description: "Height of the box", Min: num(5), Max: num(300), Unit: "mm", Required: true},
			"wall_thickness": {Type: "number", Description: "Thickness of walls", Min: num(1.5), Max: num(10), Unit: "mm"},
			"open_top":       {Type: "boolean", Description: "Hollow the box leaving the top open"},
			"corner_radius":  {Type: "number", Description: "Radius for rounded corners", Min: num(0), Max: num(20), Unit: "mm"},
			"units":          {Type: "string", Description: "Measurement units", Enum: []string{"mm", "cm", "inches"}},
		},
		Defaults: map[string]interface{}{
			"wall_thickness": 2.0,
			"open_top":       false,
			"corner_radius":  2.0,
			"units":          "mm",
		},
		Rules: []string{
			"Wall thickness must be at least 1.5mm for 3D printing",
			"Corner radius should be 1-5mm for best results",
		},
		Build: func(params map[string]interface{}) (*design.Design, error) {
			length := numberOf(params, "length")
			width := numberOf(params, "width")
			height := numberOf(params, "height")

			ops := []kernel.Operation{
				kernel.MustOperation(kernel.OpSketchRectangle, map[string]interface{}{
					"width": length, "height": width,
				}),
				kernel.MustOperation(kernel.OpExtrude, map[string]interface{}{
					"height": height,
				}),
			}
			if params["open_top"] == true {
				ops = append(ops, kernel.MustOperation(kernel.OpShell, map[string]interface{}{
					"thickness":       numberOf(params, "wall_thickness"),
					"faces_to_remove": []int{0},
				}))
			}
			if r := numberOf(params, "corner_radius"); r > 0 {
				ops = append(ops, kernel.MustOperation(kernel.OpFillet, map[string]interface{}{
					"radius": r,
				}))
			}

			return &design.Design{
				ProductType:       "box",
				Units:             params["units"].(string),
				Length:            length,
				Width:             width,
				Height:            height,
				WallThickness:     numberOf(params, "wall_thickness"),
				UseDesignLanguage: true,
				Operations:        ops,
			}, nil
		},
	}
}

func enclosureTemplate() *Template {
	return &Template{
		Name:     "enclosure",
		Category: "electronics",
		Parameters: map[string]Parameter{
			"length":         {Type: "number", Description: "Length of the enclosure", Min: num(20), Max: num(400), Unit: "mm", Required: true},
			"width":          {Type: "number", Description: "Width of the enclosure", Min: num(20), Max: num(400), Unit: "mm", Required: true},
			"height":         {Type: "number", Description: "Height of the enclosure", Min: num(10), Max: num(200), Unit: "mm", Required: true},
			"wall_thickness": {Type: "number", Description: "Thickness of walls", Min: num(1.5), Max: num(6), Unit: "mm"},
			"vent_holes":     {Type: "number", Description: "Number of ventilation holes", Min: num(0), Max: num(20)},
			"units":          {Type: "string", Description: "Measurement units", Enum: []string{"mm", "cm", "inches"}},
		},
		Defaults: map[string]interface{}{
			"wall_thickness": 2.0,
			"vent_holes":     4.0,
			"units":          "mm",
		},
		Rules: []string{
			"Add vent holes for heat-producing electronics",
			"Leave 2mm clearance around the board",
		},
		Build: func(params map[string]interface{}) (*design.Design, error) {
			length := numberOf(params, "length")
			width := numberOf(params, "width")
			height := numberOf(params, "height")
			wall := numberOf(params, "wall_thickness")

			ops := []kernel.Operation{
				kernel.MustOperation(kernel.OpSketchRectangle, map[string]interface{}{
					"width": length, "height": width,
				}),
				kernel.MustOperation(kernel.OpExtrude, map[string]interface{}{
					"height": height,
				}),
				kernel.MustOperation(kernel.OpShell, map[string]interface{}{
					"thickness":       wall,
					"faces_to_remove": []int{0},
				}),
			}

			// Vent holes along the centerline of the base.
			if vents := int(numberOf(params, "vent_holes")); vents > 0 {
				spacing := length / float64(vents+1)
				positions := make([][3]float64, vents)
				for i := range positions {
					positions[i] = [3]float64{spacing * float64(i+1), width / 2, wall}
				}
				ops = append(ops, kernel.MustOperation(kernel.OpAddHoles, map[string]interface{}{
					"positions": positions,
					"diameter":  3.0,
					"depth":     wall,
				}))
			}

			return &design.Design{
				ProductType:       "enclosure",
				Units:             params["units"].(string),
				Length:            length,
				Width:             width,
				Height:            height,
				WallThickness:     wall,
				UseDesignLanguage: true,
				Operations:        ops,
			}, nil
		},
	}
}

func phoneStandTemplate() *Template {
	return &Template{
		Name:     "phone_stand",
		Category: "accessory",
		Parameters: map[string]Parameter{
			"width":          {Type: "number", Description: "Width of the stand base", Min: num(40), Max: num(250), Unit: "mm"},
			"depth":          {Type: "number", Description: "Depth of the stand base", Min: num(40), Max: num(250), Unit: "mm"},
			"thickness":      {Type: "number", Description: "Base plate thickness", Min: num(3), Max: num(20), Unit: "mm"},
			"support_height": {Type: "number", Description: "Height of the back supports", Min: num(20), Max: num(200), Unit: "mm"},
			"units":          {Type: "string", Description: "Measurement units", Enum: []string{"mm", "cm", "inches"}},
		},
		Defaults: map[string]interface{}{
			"width":          80.0,
			"depth":          100.0,
			"thickness":      8.0,
			"support_height": 70.0,
			"units":          "mm",
		},
		Rules: []string{
			"Base depth should exceed half the device height for stability",
		},
		Build: func(params map[string]interface{}) (*design.Design, error) {
			width := numberOf(params, "width")
			depth := numberOf(params, "depth")
			thickness := numberOf(params, "thickness")

			ops := []kernel.Operation{
				kernel.MustOperation(kernel.OpSketchRectangle, map[string]interface{}{
					"width": width, "height": depth,
				}),
				kernel.MustOperation(kernel.OpExtrude, map[string]interface{}{
					"height": thickness,
				}),
				kernel.MustOperation(kernel.OpAddSupports, map[string]interface{}{
					"count":     2,
					"thickness": 5.0,
					"height":    numberOf(params, "support_height"),
				}),
				kernel.MustOperation(kernel.OpChamfer, map[string]interface{}{
					"distance": 1.0,
				}),
			}

			return &design.Design{
				ProductType:       "phone_stand",
				Units:             params["units"].(string),
				Length:            width,
				Width:             depth,
				Height:            thickness,
				UseDesignLanguage: true,
				Operations:        ops,
			}, nil
		},
	}
}

func tableTemplate() *Template {
	return &Template{
		Name:     "table",
		Category: "furniture",
		Parameters: map[string]Parameter{
			"length":        {Type: "number", Description: "Length of the tabletop", Min: num(300), Max: num(3000), Unit: "mm", Required: true},
			"width":         {Type: "number", Description: "Width of the tabletop", Min: num(300), Max: num(2000), Unit: "mm", Required: true},
			"height":        {Type: "number", Description: "Leg height", Min: num(200), Max: num(1200), Unit: "mm"},
			"top_thickness": {Type: "number", Description: "Tabletop thickness", Min: num(10), Max: num(80), Unit: "mm"},
			"leg_radius":    {Type: "number", Description: "Leg radius", Min: num(10), Max: num(80), Unit: "mm"},
			"units":         {Type: "string", Description: "Measurement units", Enum: []string{"mm", "cm", "inches"}},
		},
		Defaults: map[string]interface{}{
			"height":        700.0,
			"top_thickness": 25.0,
			"leg_radius":    25.0,
			"units":         "mm",
		},
		Rules: []string{
			"Standard dining height is 700-760mm",
			"Inset legs ~50mm from the edges",
		},
		Build: func(params map[string]interface{}) (*design.Design, error) {
			length := numberOf(params, "length")
			width := numberOf(params, "width")

			ops := []kernel.Operation{
				kernel.MustOperation(kernel.OpSketchRectangle, map[string]interface{}{
					"width": length, "height": width,
				}),
				kernel.MustOperation(kernel.OpExtrude, map[string]interface{}{
					"height": numberOf(params, "top_thickness"),
				}),
				kernel.MustOperation(kernel.OpAddLegs, map[string]interface{}{
					"count":  4,
					"height": numberOf(params, "height"),
					"radius": numberOf(params, "leg_radius"),
					"inset":  50.0,
				}),
			}

			return &design.Design{
				ProductType:       "table",
				Units:             params["units"].(string),
				Length:            length,
				Width:             width,
				Height:            numberOf(params, "height"),
				UseDesignLanguage: true,
				Operations:        ops,
			}, nil
		},
	}
}

func gearTemplate() *Template {
	return &Template{
		Name:     "gear",
		Category: "mechanical",
		Parameters: map[string]Parameter{
			"teeth":         {Type: "number", Description: "Number of teeth", Min: num(8), Max: num(200), Required: true},
			"module":        {Type: "number", Description: "Gear module (tooth size)", Min: num(0.5), Max: num(10), Unit: "mm"},
			"thickness":     {Type: "number", Description: "Gear thickness", Min: num(3), Max: num(50), Unit: "mm"},
			"bore_diameter": {Type: "number", Description: "Central hole diameter for shaft", Min: num(0), Max: num(50), Unit: "mm"},
			"units":         {Type: "string", Description: "Measurement units", Enum: []string{"mm", "cm", "inches"}},
		},
		Defaults: map[string]interface{}{
			"module":        2.0,
			"thickness":     10.0,
			"bore_diameter": 5.0,
			"units":         "mm",
		},
		Rules: []string{
			"Minimum 8 teeth to avoid undercutting",
			"Thickness should be at least 3x module for strength",
		},
		Build: func(params map[string]interface{}) (*design.Design, error) {
			module := numberOf(params, "module")
			teeth := numberOf(params, "teeth")
			thickness := numberOf(params, "thickness")

			// Blank diameter is pitch plus one module of addendum per side.
			pitch := module * teeth
			outer := pitch + 2*module

			ops := []kernel.Operation{
				kernel.MustOperation(kernel.OpSketchCircle, map[string]interface{}{
					"diameter": outer,
				}),
				kernel.MustOperation(kernel.OpExtrude, map[string]interface{}{
					"height": thickness,
				}),
			}
			if bore := numberOf(params, "bore_diameter"); bore > 0 {
				ops = append(ops, kernel.MustOperation(kernel.OpCut, map[string]interface{}{
					"tool_type": "cylinder",
					"radius":    bore / 2,
					"height":    thickness,
				}))
			}

			return &design.Design{
				ProductType:       "gear",
				Units:             params["units"].(string),
				Length:            outer,
				Width:             outer,
				Height:            thickness,
				UseDesignLanguage: true,
				Operations:        ops,
			}, nil
		},
	}
}

func hingeTemplate() *Template {
	return &Template{
		Name:     "hinge",
		Category: "mechanism",
		Parameters: map[string]Parameter{
			"hinge_length":   {Type: "number", Description: "Length of the hinge", Min: num(20), Max: num(300), Unit: "mm"},
			"hinge_width":    {Type: "number", Description: "Width of each leaf", Min: num(5), Max: num(30), Unit: "mm"},
			"flex_thickness": {Type: "number", Description: "Thickness of the flexing section", Min: num(0.3), Max: num(1.5), Unit: "mm"},
			"units":          {Type: "string", Description: "Measurement units", Enum: []string{"mm", "cm", "inches"}},
		},
		Defaults: map[string]interface{}{
			"hinge_length":   50.0,
			"hinge_width":    10.0,
			"flex_thickness": 0.4,
			"units":          "mm",
		},
		Rules: []string{
			"Living hinge flex section: 0.3-0.5mm for PLA",
			"Print flat, perpendicular to the bend direction",
		},
		Build: func(params map[string]interface{}) (*design.Design, error) {
			length := numberOf(params, "hinge_length")
			leaf := numberOf(params, "hinge_width")
			flex := numberOf(params, "flex_thickness")

			const bodyThickness = 3.0
			const flexWidth = 2.0

			// Two rigid leaves joined by a groove thinned down to the flex
			// thickness along the centerline.
			plateDepth := 2*leaf + flexWidth
			ops := []kernel.Operation{
				kernel.MustOperation(kernel.OpSketchRectangle, map[string]interface{}{
					"width": length, "height": plateDepth,
				}),
				kernel.MustOperation(kernel.OpExtrude, map[string]interface{}{
					"height": bodyThickness,
				}),
				kernel.MustOperation(kernel.OpCut, map[string]interface{}{
					"tool_type": "box",
					"length":    length,
					"width":     flexWidth,
					"height":    bodyThickness - flex,
					"position":  [3]float64{-length / 2, -flexWidth / 2, flex},
				}),
			}

			return &design.Design{
				ProductType:       "hinge",
				Units:             params["units"].(string),
				Length:            length,
				Width:             plateDepth,
				Height:            bodyThickness,
				WallThickness:     flex,
				UseDesignLanguage: true,
				Operations:        ops,
			}, nil
		},
	}
}

func hookTemplate() *Template {
	return &Template{
		Name:     "hook",
		Category: "organization",
		Parameters: map[string]Parameter{
			"hook_depth":    {Type: "number", Description: "How far the hook extends from the wall", Min: num(20), Max: num(100), Unit: "mm"},
			"hook_width":    {Type: "number", Description: "Width of the hook opening", Min: num(10), Max: num(80), Unit: "mm"},
			"hook_count":    {Type: "number", Description: "Number of hooks", Min: num(1), Max: num(10)},
			"load_capacity": {Type: "string", Description: "Expected load", Enum: []string{"light", "medium", "heavy"}},
			"units":         {Type: "string", Description: "Measurement units", Enum: []string{"mm", "cm", "inches"}},
		},
		Defaults: map[string]interface{}{
			"hook_depth":    40.0,
			"hook_width":    30.0,
			"hook_count":    1.0,
			"load_capacity": "medium",
			"units":         "mm",
		},
		Rules: []string{
			"Light load: 2mm wall, medium: 3mm, heavy: 4mm",
			"Print hook standing up for strength",
		},
		Build: func(params map[string]interface{}) (*design.Design, error) {
			depth := numberOf(params, "hook_depth")
			width := numberOf(params, "hook_width")
			count := int(numberOf(params, "hook_count"))

			wall := map[string]float64{"light": 2, "medium": 3, "heavy": 4}[params["load_capacity"].(string)]

			// Wall plate sized to the hook row, one arm per hook jutting
			// out of the plate with an upturned lip at the tip.
			cell := width + 20
			baseWidth := cell * float64(count)
			const baseHeight = 60.0

			ops := []kernel.Operation{
				kernel.MustOperation(kernel.OpSketchRectangle, map[string]interface{}{
					"width": baseWidth, "height": baseHeight,
				}),
				kernel.MustOperation(kernel.OpExtrude, map[string]interface{}{
					"height": wall,
				}),
			}
			for i := 0; i < count; i++ {
				cx := cell*(float64(i)+0.5) - baseWidth/2
				ops = append(ops,
					kernel.MustOperation(kernel.OpFuse, map[string]interface{}{
						"tool_type": "box",
						"length":    width,
						"width":     wall,
						"height":    depth,
						"position":  [3]float64{cx - width/2, -wall / 2, wall},
					}),
					kernel.MustOperation(kernel.OpFuse, map[string]interface{}{
						"tool_type": "box",
						"length":    width,
						"width":     10.0,
						"height":    wall,
						"position":  [3]float64{cx - width/2, wall / 2, depth},
					}))
			}
			holeDiameter := 4.5
			if params["load_capacity"] != "light" {
				holeDiameter = 5.5
			}
			ops = append(ops, kernel.MustOperation(kernel.OpAddHoles, map[string]interface{}{
				"positions": [][3]float64{
					{-baseWidth / 4, baseHeight/2 - 10, wall},
					{baseWidth / 4, baseHeight/2 - 10, wall},
				},
				"diameter": holeDiameter,
				"depth":    wall,
			}))

			return &design.Design{
				ProductType:       "hook",
				Units:             params["units"].(string),
				Length:            baseWidth,
				Width:             baseHeight,
				Height:            depth,
				WallThickness:     wall,
				UseDesignLanguage: true,
				Operations:        ops,
			}, nil
		},
	}
}

func bicycleTemplate() *Template {
	return &Template{
		Name:     "bicycle",
		Category: "vehicle",
		Parameters: map[string]Parameter{
			"rider_height": {Type: "number", Description: "Rider height", Min: num(100), Max: num(2500), Required: true},
			"material":     {Type: "string", Description: "Frame material", Enum: []string{"aluminum", "steel", "carbon"}},
			"units":        {Type: "string", Description: "Units of the rider height", Enum: []string{"mm", "cm", "inches"}},
		},
		Defaults: map[string]interface{}{
			"material": "aluminum",
			"units":    "cm",
		},
		Rules: []string{
			"Seat tube length is half the rider height",
		},
		Build: func(params map[string]interface{}) (*design.Design, error) {
			return &design.Design{
				ProductType: "bicycle",
				Units:       params["units"].(string),
				RiderHeight: numberOf(params, "rider_height"),
				Material:    params["material"].(string),
			}, nil
		},
	}
}

func numberOf(params map[string]interface{}, key string) float64 {
	n, _ := asNumber(params[key])
	return n
}

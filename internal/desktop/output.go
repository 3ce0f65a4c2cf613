package desktop

// Output is a monitor in the layout.
type Output struct {
	Name string
	// Layout is the output's box in layout coordinates.
	Layout Geometry
	// Usable excludes space reserved by panels and docks.
	Usable Geometry
}

// AddOutput registers an output. An empty usable area defaults to the full
// layout box. Re-adding a name replaces the previous geometry.
func (d *Desktop) AddOutput(name string, layout, usable Geometry) *Output {
	if usable.empty() {
		usable = layout
	}
	for _, o := range d.outputs {
		if o.Name == name {
			o.Layout, o.Usable = layout, usable
			d.reassignOutputs()
			return o
		}
	}
	o := &Output{Name: name, Layout: layout, Usable: usable}
	d.outputs = append(d.outputs, o)
	d.reassignOutputs()
	d.logger.Debug("output added", "name", name, "layout", layout)
	return o
}

// RemoveOutput drops an output. Views on it are moved to whichever output
// now contains their center, if any.
func (d *Desktop) RemoveOutput(name string) {
	for i, o := range d.outputs {
		if o.Name == name {
			d.outputs = append(d.outputs[:i], d.outputs[i+1:]...)
			break
		}
	}
	d.reassignOutputs()
}

// Outputs returns the registered outputs in insertion order.
func (d *Desktop) Outputs() []*Output {
	return d.outputs
}

func (d *Desktop) outputFor(g Geometry) *Output {
	cx, cy := g.X+g.Width/2, g.Y+g.Height/2
	for _, o := range d.outputs {
		if o.Layout.contains(cx, cy) {
			return o
		}
	}
	if len(d.outputs) > 0 {
		return d.outputs[0]
	}
	return nil
}

func (d *Desktop) reassignOutputs() {
	for _, v := range d.views {
		v.Output = d.outputFor(v.Current)
	}
}

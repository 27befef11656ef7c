/*
 * kernel.go, part of cljgrid.
 *
 * Copyright 2024 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

package clj

import (
	"fmt"

	chem "github.com/rmera/cljgrid"
	"github.com/rmera/cljgrid/lanes"
	"github.com/rmera/cljgrid/lj"
)

//Policy is the treatment given to the electrostatics at the cutoff.
type Policy int

const (
	//Cutoff uses q/r within the cutoff and nothing beyond.
	Cutoff Policy = iota
	//Shifted uses q*(1/r - 1/Rc + (r-Rc)/Rc^2), which goes smoothly to zero at Rc.
	Shifted
	//ReactionField uses q*(1/r + krf*r^2 - crf), surrounding the cutoff sphere with a dielectric.
	ReactionField
)

func (P Policy) String() string {
	switch P {
	case Cutoff:
		return "cutoff"
	case Shifted:
		return "shifted"
	case ReactionField:
		return "reaction-field"
	default:
		return fmt.Sprintf("Policy(%d)", int(P))
	}
}

//Params are the cutoffs and electrostatics policy for the CLJ evaluation.
type Params struct {
	Policy        Policy
	CoulombCutoff float64 //A
	LJCutoff      float64 //A
	Dielectric    float64 //only used by ReactionField
}

//DefaultParams returns plain-cutoff electrostatics with 15 A cutoffs
//and a water-like reaction field dielectric.
func DefaultParams() Params {
	return Params{Policy: Cutoff, CoulombCutoff: 15, LJCutoff: 15, Dielectric: 78.3}
}

//Validate returns a ConfigurationError if the parameters can't be used.
func (P Params) Validate() error {
	if P.CoulombCutoff <= 0 {
		return chem.NewError(chem.ConfigurationError, fmt.Sprintf("Coulomb cutoff must be positive, got %g", P.CoulombCutoff), "clj.Params.Validate")
	}
	if P.LJCutoff < 0 {
		return chem.NewError(chem.ConfigurationError, fmt.Sprintf("LJ cutoff can't be negative, got %g", P.LJCutoff), "clj.Params.Validate")
	}
	if P.Policy == ReactionField && P.Dielectric < 1 {
		return chem.NewError(chem.ConfigurationError, fmt.Sprintf("reaction field dielectric must be >= 1, got %g", P.Dielectric), "clj.Params.Validate")
	}
	if P.Policy < Cutoff || P.Policy > ReactionField {
		return chem.NewError(chem.ConfigurationError, fmt.Sprintf("unknown electrostatics policy %d", P.Policy), "clj.Params.Validate")
	}
	return nil
}

//ReactionFieldConstants returns the krf and crf constants for the
//reaction field with the cutoff and dielectric in P.
func (P Params) ReactionFieldConstants() (krf, crf float64) {
	rc := P.CoulombCutoff
	e := P.Dielectric
	krf = (1 / (rc * rc * rc)) * ((e - 1) / (2*e + 1))
	crf = (1 / rc) * ((3 * e) / (2*e + 1))
	return krf, crf
}

//Kernel evaluates the CLJ functions over lanes. Build it with NewKernel.
type Kernel struct {
	policy Policy
	rc     lanes.Float
	rlj    lanes.Float
	rcinv  lanes.Float
	rcinv2 lanes.Float
	krf    lanes.Float
	crf    lanes.Float
	table  []lj.Pair
	ntypes int
}

//NewKernel returns a kernel for the parameters P. table is used for the LJ pairs
//and can be nil if only Coulomb is needed.
func NewKernel(P Params, table *lj.Table) *Kernel {
	K := &Kernel{policy: P.Policy}
	K.rc = lanes.Splat(P.CoulombCutoff)
	K.rlj = lanes.Splat(P.LJCutoff)
	K.rcinv = lanes.Splat(1 / P.CoulombCutoff)
	K.rcinv2 = lanes.Splat(1 / (P.CoulombCutoff * P.CoulombCutoff))
	krf, crf := P.ReactionFieldConstants()
	K.krf = lanes.Splat(krf)
	K.crf = lanes.Splat(crf)
	if table != nil {
		K.table, K.ntypes = table.Pairs()
	}
	return K
}

//Coulomb returns, for each lane, the distance-dependent part of the Coulomb energy
//(the energy is qi*qj times this value) under the kernel's policy. Lanes at r>=Rc are zero.
func (K *Kernel) Coulomb(r lanes.Float) lanes.Float {
	rinv := r.Rcp()
	var f lanes.Float
	switch K.policy {
	case Shifted:
		//1/r - 1/Rc + (r-Rc)/Rc^2
		f = rinv.Sub(K.rcinv).Add(r.Sub(K.rc).Mul(K.rcinv2))
	case ReactionField:
		//1/r + krf*r^2 - crf
		f = rinv.Add(K.krf.Mul(r).Mul(r)).Sub(K.crf)
	default:
		f = rinv
	}
	return f.And(r.Less(K.rc))
}

//LJ returns, for each lane, eps*((sig/r)^12 - (sig/r)^6), zero for lanes at r>=Rlj.
//The factor 4 of the 12-6 potential is not included.
func (K *Kernel) LJ(r2, r lanes.Float, sig, eps lanes.Float) lanes.Float {
	sig2 := sig.Mul(sig)
	sr2 := sig2.Mul(r2.Rcp())
	sr6 := sr2.Mul(sr2).Mul(sr2)
	e := eps.Mul(sr6.Mul(sr6).Sub(sr6))
	return e.And(r.Less(K.rlj))
}

//pairs puts in sig and eps the combined LJ parameters between the id a and each lane of b.
func (K *Kernel) pairs(a int32, b lanes.Int) (sig, eps lanes.Float) {
	row := K.table[int(a)*K.ntypes : int(a+1)*K.ntypes]
	for i, id := range b {
		p := row[id]
		sig[i] = p.Sigma
		eps[i] = p.Epsilon
	}
	return sig, eps
}

//CloseEnergy returns the exact Coulomb energy and the LJ sum between all the
//atoms in probe and all the atoms in env. The LJ sum lacks the factor 4 of the
//12-6 potential, which the caller applies once, to the total.
func (K *Kernel) CloseEnergy(probe, env *Atoms) (coul, ljsum float64) {
	if probe.Len() == 0 || env.Len() == 0 {
		return 0, 0
	}
	nenv := len(env.X)
	for i := 0; i < probe.Len(); i++ {
		xi, yi, zi := lanes.Splat(probe.X[i]), lanes.Splat(probe.Y[i]), lanes.Splat(probe.Z[i])
		id := probe.ID[i]
		var icoul, ilj lanes.Float
		for j := 0; j < nenv; j += lanes.Width {
			dx := xi.Sub(lanes.Load(env.X[j:]))
			dy := yi.Sub(lanes.Load(env.Y[j:]))
			dz := zi.Sub(lanes.Load(env.Z[j:]))
			r2 := dx.Mul(dx).Add(dy.Mul(dy)).Add(dz.Mul(dz))
			r := r2.Sqrt()
			icoul = icoul.Add(K.Coulomb(r).Mul(lanes.Load(env.Q[j:])))
			if K.table != nil && id != 0 {
				sig, eps := K.pairs(id, lanes.LoadInt(env.ID[j:]))
				ilj = ilj.Add(K.LJ(r2, r, sig, eps))
			}
		}
		coul += probe.Q[i] * icoul.Sum()
		ljsum += ilj.Sum()
	}
	return coul, ljsum
}

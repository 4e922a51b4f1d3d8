// Public domain.

/*
Apwfit fits a Bayesian apparent polar wander path to a compilation of
paleomagnetic poles.

Program overview

Input is a CSV file of paleomagnetic pole estimates, each a direction
with a 95% confidence radius and an age with either gaussian or uniform
uncertainty.  The program models the wander path of the poles as a
sequence of rotations about Euler poles, each rotation running at a
constant rate until a changepoint age hands over to the next.  The
posterior over starting pole, Euler pole directions, rates, changepoints
and observation ages is drawn by Markov chain Monte Carlo, and the
fitted path is reconstructed from the posterior draws.

Output is a set of CSV files of posterior reconstructions:  path
polylines, synthetic poles at the observations' posterior ages, Euler
pole directions with rates and implied plate speeds, changepoint ages,
and observation ages.

Command line usage

   apwfit [options] <polefile>    fit wander path to pole compilation
   apwfit -v                      display version and copyright

Options:

   -name <model name>     default: pole file base name
   -d <directory>         trace and output directory, default .
   -x <name,name,...>     pole records to exclude
   -n <rotations>         rotation regimes to fit, default 2
   -i <iterations>        sampler iterations, default 100000
   -s <draws>             posterior draws to reconstruct, default 500
   -k <concentration>     Watson girdle concentration, <= 0, default 0
   -r <scale>             rotation rate prior scale, default 2.5
   -slon, -slat <deg>     prior axis site, default 0, 0
   -f                     resample even if a saved trace exists
   -repeatable            fixed random seed

File formats

The pole file is CSV with a header row and named columns

   Name           record name, used with -x
   PLon, PLat     pole longitude and latitude, degrees
   A95            95% confidence radius, degrees
   AgeNominal     nominal age, Myr
   AgeType        gaussian or uniform
   Gaussian2Sigma 2σ age uncertainty, gaussian records
   AgeLower       lower age bound, uniform records
   AgeUpper       upper age bound, uniform records

Sampled traces are written to the -d directory as gzipped gob files
keyed by model name.  A following run with the same name loads the
saved trace instead of sampling again; -f forces a fresh run.

Algorithm outline

The path is anchored at the age of the oldest observation and walked
toward the present.  A Von Mises-Fisher prior centered on the oldest
observation covers the starting pole.  Euler pole directions carry
Watson girdle priors about the -slon -slat axis, rotation rates
exponential priors, and changepoints uniform priors over the observed
age range.  Each observation contributes a Von Mises-Fisher likelihood,
with concentration recovered from its reported A95, evaluated at the
position the path predicts for the observation's own age variable.

Sampling is componentwise random walk Metropolis after a greedy search
for a posterior mode to start from.  The first fifth of the iterations
is discarded as burn-in.

Before sampling, the program prints the rms of a least squares fit of
the poles to linear motion along a single great circle, a quick measure
of how far the record departs from one constant rotation.
*/
package main

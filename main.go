package main

import (
	"flag"
	"fmt"
	"os"

	"fleetsim/internal/config"
	"fleetsim/internal/dispatch"
	"fleetsim/internal/fleet"
	"fleetsim/internal/logger"
	"fleetsim/internal/occupancy"
	"fleetsim/internal/ordergen"
	"fleetsim/internal/pathing"
	"fleetsim/internal/rating"
	"fleetsim/internal/region"
	"fleetsim/internal/runlog"
	"fleetsim/internal/service"
	"fleetsim/internal/vehicle"
)

var version = "dev"

func main() {
	ticks := flag.Int("ticks", 500, "number of simulation ticks to run")
	vehicles := flag.Int("vehicles", 12, "fleet size")
	restaurants := flag.Int("restaurants", 3, "restaurant count")
	neighborhoods := flag.Int("neighborhoods", 6, "neighborhood count")
	gridSize := flag.Int("grid", 4, "side length of the intersection grid")
	orders := flag.Int("orders", 200, "orders generated over the run")
	configPath := flag.String("config", "", "JSON config file (defaults used when unset)")
	runlogPath := flag.String("runlog", "", "SQLite file to append this run's scoreboard to (skipped when unset)")
	flag.Parse()

	logger.Banner(version)

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			logger.Error("CONFIG", fmt.Sprintf("Failed to load %s: %v", *configPath, err))
			os.Exit(1)
		}
		cfg = loaded
	}

	r, err := buildRegion(*gridSize, *restaurants, *neighborhoods)
	if err != nil {
		logger.Error("REGION", fmt.Sprintf("Build failed: %v", err))
		os.Exit(1)
	}
	logger.Success("REGION", fmt.Sprintf("Built %dx%d grid (%d restaurants, %d neighborhoods)", *gridSize, *gridSize, *restaurants, *neighborhoods))

	calc := pathing.New(r)
	occ := occupancy.New(r)
	registry := dispatch.NewRegistry()

	dispatchCfg := dispatch.Config{
		VehicleCapacity:   cfg.VehicleCapacity,
		SendOutSlackTicks: cfg.SendOutSlackTicks,
		SendOutWeightFrac: cfg.SendOutWeightFrac,
	}
	var restaurantLocs []region.Location
	for _, n := range r.Nodes() {
		if n.IsRestaurant() {
			restaurantLocs = append(restaurantLocs, n.Loc)
			dispatch.NewDispatcher(n.Loc, r, calc, occ, registry, dispatchCfg)
		}
	}

	vs := make([]*vehicle.Vehicle, *vehicles)
	for i := 0; i < *vehicles; i++ {
		home := restaurantLocs[i%len(restaurantLocs)]
		v := vehicle.New(i+1, cfg.VehicleCapacity, home, r, calc, occ)
		v.Reset(0)
		vs[i] = v
		if d, ok := registry.At(home); ok {
			d.AddVehicle(v)
		}
	}
	fm := fleet.NewManager(vs)
	logger.Success("FLEET", fmt.Sprintf("Spawned %d vehicles across %d restaurants", len(vs), len(restaurantLocs)))

	gen, err := ordergen.New(r, ordergen.Params{
		Seed:        cfg.OrderGenSeed,
		LastTick:    *ticks,
		OrderCount:  *orders,
		StdDev:      cfg.OrderGenStdDev,
		MaxWeight:   cfg.OrderGenMaxWeight,
		WindowTicks: cfg.OrderGenWindowTicks,
	})
	if err != nil {
		logger.Error("ORDERGEN", fmt.Sprintf("Build failed: %v", err))
		os.Exit(1)
	}

	amountDelivered, err := rating.NewAmountDelivered(cfg.AmountDeliveredFactor)
	if err != nil {
		logger.Error("RATING", fmt.Sprintf("AmountDelivered: %v", err))
		os.Exit(1)
	}
	inTime := rating.NewInTime(cfg.InTimeMaxTicksOff, cfg.InTimeIgnoredTicks)
	travelDistance, err := rating.NewTravelDistance(calc, cfg.TravelDistanceFactor)
	if err != nil {
		logger.Error("RATING", fmt.Sprintf("TravelDistance: %v", err))
		os.Exit(1)
	}

	svc := service.New(r, occ, fm, registry, cfg.RebalanceEnabled, gen, amountDelivered, inTime, travelDistance)

	logger.Section("Run")
	logger.Stats("ticks", *ticks)
	logger.Stats("vehicles", len(vs))
	logger.Stats("orders", *orders)
	logger.Server(fmt.Sprintf("%d ticks", *ticks))
	for tick := 0; tick < *ticks; tick++ {
		if _, err := svc.Tick(tick); err != nil {
			logger.Error("SERVICE", fmt.Sprintf("Tick %d: %v", tick, err))
			os.Exit(1)
		}
	}

	logger.Section("Scoreboard")
	logger.Stats("amount_delivered (x1000)", int(amountDelivered.Score()*1000))
	logger.Stats("in_time (x1000)", int(inTime.Score()*1000))
	logger.Stats("travel_distance (x1000)", int(travelDistance.Score()*1000))

	if *runlogPath != "" {
		db, err := runlog.Open(*runlogPath)
		if err != nil {
			logger.Error("RUNLOG", fmt.Sprintf("Open failed: %v", err))
			os.Exit(1)
		}
		defer db.Close()
		err = db.Record(runlog.Summary{
			Seed:                 cfg.OrderGenSeed,
			Ticks:                *ticks,
			VehicleCount:         len(vs),
			AmountDeliveredScore: amountDelivered.Score(),
			InTimeScore:          inTime.Score(),
			TravelDistanceScore:  travelDistance.Score(),
		})
		if err != nil {
			logger.Error("RUNLOG", fmt.Sprintf("Record failed: %v", err))
			os.Exit(1)
		}
	}

	logger.Info("RUN", "Complete")
}

// buildRegion lays restaurants and neighborhoods out over a size x size
// grid of intersections connected to their immediate right and down
// neighbors, with edge durations derived from Euclidean distance.
func buildRegion(size, restaurantCount, neighborhoodCount int) (*region.Region, error) {
	b := region.NewBuilder(nil)

	type cell struct{ x, y int32 }
	var cells []cell
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			cells = append(cells, cell{int32(x), int32(y)})
		}
	}

	for i, c := range cells {
		loc := region.Location{X: c.x, Y: c.y}
		switch {
		case i < restaurantCount:
			b.AddRestaurant(loc, fmt.Sprintf("R%d", i+1), []string{"entree", "side"})
		case i < restaurantCount+neighborhoodCount:
			b.AddNeighborhood(loc, fmt.Sprintf("N%d", i-restaurantCount+1))
		default:
			b.AddIntersection(loc, fmt.Sprintf("I%d", i+1))
		}
	}

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			loc := region.Location{X: int32(x), Y: int32(y)}
			if x+1 < size {
				b.AddEdge(loc, region.Location{X: int32(x + 1), Y: int32(y)})
			}
			if y+1 < size {
				b.AddEdge(loc, region.Location{X: int32(x), Y: int32(y + 1)})
			}
		}
	}

	return b.Build()
}
